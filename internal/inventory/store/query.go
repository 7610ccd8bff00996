package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/imamik/switchyard/internal/inventory"
)

type scope func(*gorm.DB) *gorm.DB

// getOne returns the single row matched by sc.
func getOne[T any](ctx context.Context, db *gorm.DB, sc scope) (*T, error) {
	var rows []T
	if err := sc(db.WithContext(ctx)).Order("id").Limit(2).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	switch len(rows) {
	case 0:
		return nil, inventory.ErrNotFound
	case 1:
		return &rows[0], nil
	default:
		return nil, inventory.ErrMultipleResults
	}
}

// list returns every row matched by sc ordered by ID.
func list[T any](ctx context.Context, db *gorm.DB, sc scope) ([]T, error) {
	var rows []T
	if err := sc(db.WithContext(ctx)).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// create inserts v inside its own transaction. Within InTx this becomes a
// savepoint, so a failed insert does not poison the enclosing transaction.
func create(ctx context.Context, db *gorm.DB, v any) error {
	return translate(db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(v).Error
	}))
}

func save(ctx context.Context, db *gorm.DB, v any) error {
	return translate(db.WithContext(ctx).Save(v).Error)
}

// where chains one equality predicate per non-zero value.
type where struct {
	db *gorm.DB
}

func (w where) eq(column string, value any) where {
	switch v := value.(type) {
	case uint:
		if v == 0 {
			return w
		}
	case string:
		if v == "" {
			return w
		}
	case inventory.Status:
		if v == "" {
			return w
		}
	}
	return where{db: w.db.Where(column+" = ?", value)}
}

func (w where) prefix(column, prefix string) where {
	if prefix == "" {
		return w
	}
	return where{db: w.db.Where(column+" LIKE ? ESCAPE '!'", likeEscaper.Replace(prefix)+"%")}
}

func (w where) null(column string, enabled bool) where {
	if !enabled {
		return w
	}
	return where{db: w.db.Where(column + " IS NULL")}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func recordScope(f inventory.RecordFilter, nameColumn string) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("id", f.ID).eq("slug", f.Slug).eq(nameColumn, f.Name).db
	}
}
