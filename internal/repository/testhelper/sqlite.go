// Package testhelper provides store fixtures for tests in other packages.
package testhelper

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Thanat-Wut/worddee-api/internal/repository"
)

// NewSQLiteRepository returns a repository backed by a fresh SQLite file in
// t.TempDir with the schema applied. It is closed via t.Cleanup.
func NewSQLiteRepository(t *testing.T) *repository.SQLiteRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "words.db")
	if err := repository.ApplySchema(repository.DriverSQLite, dsn); err != nil {
		t.Fatalf("testhelper: apply schema: %v", err)
	}

	db, err := repository.OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testhelper: open sqlite: %v", err)
	}

	repo := repository.NewSQLiteRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}
