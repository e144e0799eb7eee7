package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/services"
	"tracker/internal/store"
)

// openDatabase loads the configuration and opens a migrated database.
func openDatabase(migrate bool) (*database.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// --- migrateCmd ---

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "applies, rolls back or reports schema migrations" }
func (*migrateCmd) Usage() string {
	return `trackerctl migrate <up|down [N]|version>

up applies every pending migration. down rolls back N migrations (default 1)
and version prints the applied version. Rollback and version are only
available for postgres; sqlite is migrated from the models.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	db, err := openDatabase(false)
	if err != nil {
		return fail("%v", err)
	}
	defer db.Close()

	switch f.Arg(0) {
	case "up":
		if err := db.RunMigrations(); err != nil {
			return fail("%v", err)
		}
		fmt.Println("Migrations applied successfully")

	case "down":
		steps := 1
		if f.NArg() > 1 {
			steps, err = strconv.Atoi(f.Arg(1))
			if err != nil || steps < 1 {
				return fail("invalid step count %q", f.Arg(1))
			}
		}
		if err := db.RollbackMigrations(steps); err != nil {
			return fail("%v", err)
		}
		fmt.Printf("Rolled back %d migration(s)\n", steps)

	case "version":
		version, dirty, err := db.MigrationVersion()
		if err != nil {
			return fail("%v", err)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)

	default:
		fmt.Fprintf(os.Stderr, "unknown migrate command %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

// --- exportCmd ---

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes every record to a JSON backup" }
func (*exportCmd) Usage() string {
	return `trackerctl export [-o <file>]

Writes the whole store as a versioned JSON document, to stdout when -o is omitted.
`
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "The path of the backup file to write.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := openDatabase(true)
	if err != nil {
		return fail("%v", err)
	}
	defer db.Close()

	blob, err := services.NewBackupService(store.New(db.DB())).ExportJSON(ctx)
	if err != nil {
		return fail("export: %v", err)
	}

	if c.out == "" {
		if _, err := os.Stdout.Write(blob); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, blob, 0o600); err != nil {
		return fail("write %s: %v", c.out, err)
	}
	fmt.Fprintf(os.Stderr, "Backup written to %s\n", c.out)
	return subcommands.ExitSuccess
}

// --- importCmd ---

type importCmd struct {
	in string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replaces every record with a JSON backup" }
func (*importCmd) Usage() string {
	return `trackerctl import [-i <file>]

Replaces the whole store with the content of a backup, read from stdin when -i
is omitted. Nothing changes when the backup is invalid.

A running API server keeps serving the records it loaded before the import,
along with any dashboard entries cached in Redis, until it is restarted. Stop
the server first, or restart it afterwards. POST /api/v1/backup/import on the
server itself reloads everything in place.
`
}
func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "i", "", "The path of the backup file to read.")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var (
		blob []byte
		err  error
	)
	if c.in == "" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(c.in)
	}
	if err != nil {
		return fail("read backup: %v", err)
	}

	db, err := openDatabase(true)
	if err != nil {
		return fail("%v", err)
	}
	defer db.Close()

	result, err := services.NewBackupService(store.New(db.DB())).Import(ctx, blob)
	if err != nil {
		return fail("import: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Imported %d habits, %d entries, %d goals, %d stocks, %d transactions, %d settings\n",
		result.Habits, result.HabitEntries, result.Goals, result.Stocks, result.Transactions, result.Settings)
	fmt.Fprintln(os.Stderr, "Restart any running API server to pick up the imported data")
	return subcommands.ExitSuccess
}
