// Package store persists small JSON documents (statistics, risk snapshot)
// by key, either as files in a directory or as rows in a SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no document exists for the key.
var ErrNotFound = errors.New("document not found")

// Store is a key/document store. Documents are JSON-encoded.
type Store interface {
	Load(ctx context.Context, key string, dst any) error
	Save(ctx context.Context, key string, v any) error
	Close() error
}

// Open returns the store for driver ("file" or "sqlite") rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
