package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	msqlite "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// foldFunc lowercases text with full Unicode case mapping. The builtin
// LIKE only folds ASCII letters.
const foldFunc = "fold"

var registerFuncs = sync.OnceValue(func() error {
	return msqlite.RegisterDeterministicScalarFunction(foldFunc, 1, func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return foldText(v), nil
		case []byte:
			return foldText(string(v)), nil
		default:
			return v, nil
		}
	})
})

func foldText(s string) string {
	return strings.ToLower(s)
}

// Open opens (or creates) the sqlite database holding users and offers.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := registerFuncs(); err != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", err)
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serialises writers; for :memory: it also keeps
	// every query on the same database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Initializer is implemented by repositories owning a table.
type Initializer interface {
	Init(ctx context.Context) error
}

// InitAll creates the tables of every repository, in order.
func InitAll(ctx context.Context, repos ...Initializer) error {
	for _, r := range repos {
		if err := r.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}
