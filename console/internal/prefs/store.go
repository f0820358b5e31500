// Package prefs is host-local key-value storage for UI preferences.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/anavsan/anavsan/console/internal/config"
)

// LastOpenSubmenu holds the name of the sidebar submenu left open.
const LastOpenSubmenu = "anavsan_last_open_submenu"

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("preference not found")

// Store persists string preferences.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens the store for the configured driver.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		s, err := NewSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}
