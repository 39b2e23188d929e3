package database

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

// Migrate brings the database in line with the given tables. In safe mode
// columns and indexes that are no longer declared are left in place.
func Migrate(ctx context.Context, db *sql.DB, safe bool, tables ...*schema.Table) error {
	drv := entsql.OpenDB(dialect.Postgres, db)

	m, err := schema.NewMigrate(drv,
		schema.WithDropColumn(!safe),
		schema.WithDropIndex(!safe),
		schema.WithForeignKeys(true),
	)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
