/*-------------------------------------------------------------------------
 *
 * migrations.go
 *    SQL migration runner for KnowledgeDesk
 *
 * Applies .sql files from the migrations directory in lexical order and
 * records applied versions in kdesk.schema_migrations.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/db/migrations.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* MigrationRunner applies SQL migrations from a directory */
type MigrationRunner struct {
	db  *sqlx.DB
	dir string
}

/* NewMigrationRunner creates a new migration runner */
func NewMigrationRunner(db *sqlx.DB, dir string) (*MigrationRunner, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory not accessible: dir='%s', error=%w", dir, err)
	}
	return &MigrationRunner{db: db, dir: dir}, nil
}

/* Run applies all pending migrations in lexical filename order */
func (m *MigrationRunner) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS kdesk`); err != nil {
		return fmt.Errorf("schema creation failed: error=%w", err)
	}
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kdesk.schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("migration tracking table creation failed: error=%w", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("migrations directory read failed: dir='%s', error=%w", m.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		applied, err := m.isApplied(ctx, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("migration read failed: file='%s', error=%w", name, err)
		}

		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration transaction begin failed: file='%s', error=%w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration apply failed: file='%s', error=%w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kdesk.schema_migrations (version) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration record failed: file='%s', error=%w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration commit failed: file='%s', error=%w", name, err)
		}

		metrics.InfoWithContext(ctx, "Migration applied", map[string]interface{}{
			"file": name,
		})
	}

	return nil
}

func (m *MigrationRunner) isApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := m.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM kdesk.schema_migrations WHERE version = $1`, version)
	if err != nil {
		return false, fmt.Errorf("migration status check failed: version='%s', error=%w", version, err)
	}
	return count > 0, nil
}
