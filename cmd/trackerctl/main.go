// Command trackerctl runs maintenance tasks against the tracker database:
// schema migrations and backup export or import.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"tracker/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	commander := subcommands.NewCommander(flag.CommandLine, "trackerctl")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&migrateCmd{}, "database")
	commander.Register(&exportCmd{}, "backup")
	commander.Register(&importCmd{}, "backup")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
