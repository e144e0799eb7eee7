// Package store is the record store the tracker engines read and write.
//
// Each record type lives in its own id-keyed collection. The collections only
// offer the primitive operations the engines need (insert, partial update,
// delete by id or by field, full scan, range on a field); every invariant
// that spans records, such as one habit entry per (habit, date), is the
// engines' job.
package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tracker/internal/models"
)

// Collection is a gorm-backed collection of T keyed by the string "id" column.
// Errors from the database are returned unchanged.
type Collection[T any] struct {
	db *gorm.DB
}

// NewCollection creates a collection over db.
func NewCollection[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

// Add inserts a record. The id and creation time are generated when empty.
func (c *Collection[T]) Add(ctx context.Context, record *T) error {
	return c.db.WithContext(ctx).Create(record).Error
}

// BulkAdd inserts records in batches. An empty slice is a no-op.
func (c *Collection[T]) BulkAdd(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).CreateInBatches(&records, 200).Error
}

// Get returns the record with the given id, or nil when there is none.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var out []T
	if err := c.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Update applies a partial update, keyed by column name, to the record with
// the given id. It reports whether a record matched.
func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the record with the given id. Deleting a missing id is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error
}

// DeleteWhere removes every record whose field equals value and returns how many went.
func (c *Collection[T]) DeleteWhere(ctx context.Context, field string, value interface{}) (int64, error) {
	res := c.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).Delete(new(T))
	return res.RowsAffected, res.Error
}

// FindBy returns every record whose field equals value, in id order.
func (c *Collection[T]) FindBy(ctx context.Context, field string, value interface{}) ([]T, error) {
	var out []T
	err := c.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Order("id").
		Find(&out).Error
	return out, err
}

// All returns the full collection in id order, which is creation order for generated ids.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := c.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// AllOrderedBy returns the full collection sorted ascending by field.
func (c *Collection[T]) AllOrderedBy(ctx context.Context, field string) ([]T, error) {
	var out []T
	err := c.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: field}}).
		Order("id").
		Find(&out).Error
	return out, err
}

// RangeByField returns records whose field lies between lower and upper.
// Both bounds are included when inclusive is true and excluded otherwise.
func (c *Collection[T]) RangeByField(ctx context.Context, field string, lower, upper interface{}, inclusive bool) ([]T, error) {
	col := clause.Column{Name: field}
	var conds []clause.Expression
	if inclusive {
		conds = []clause.Expression{clause.Gte{Column: col, Value: lower}, clause.Lte{Column: col, Value: upper}}
	} else {
		conds = []clause.Expression{clause.Gt{Column: col, Value: lower}, clause.Lt{Column: col, Value: upper}}
	}

	var out []T
	err := c.db.WithContext(ctx).
		Clauses(clause.Where{Exprs: conds}).
		Order(clause.OrderByColumn{Column: col}).
		Order("id").
		Find(&out).Error
	return out, err
}

// Count returns the number of records in the collection.
func (c *Collection[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

// Clear removes every record in the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error
}

// Store groups the six collections that make up the tracker's data.
type Store struct {
	db *gorm.DB

	Habits       *Collection[models.Habit]
	HabitEntries *Collection[models.HabitEntry]
	Goals        *Collection[models.Goal]
	Stocks       *Collection[models.Stock]
	Transactions *Collection[models.Transaction]
	Settings     *Collection[models.AppSettings]
}

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Habits:       NewCollection[models.Habit](db),
		HabitEntries: NewCollection[models.HabitEntry](db),
		Goals:        NewCollection[models.Goal](db),
		Stocks:       NewCollection[models.Stock](db),
		Transactions: NewCollection[models.Transaction](db),
		Settings:     NewCollection[models.AppSettings](db),
	}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// AutoMigrate creates or updates the tables for every record type.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(models.All...)
}
