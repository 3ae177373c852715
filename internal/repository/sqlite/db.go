// Package sqlite persists run history in an embedded database.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"dochub/internal/config"
)

// NewDB opens the embedded database.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// The embedded driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent batch completions.
	db.SetMaxOpenConns(1)
	return db, nil
}
