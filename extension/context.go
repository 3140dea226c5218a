// context.go defines the Context interface for extension access to mdkb internals.
//
// Separated from extension.go to isolate dependency injection concerns.
// The Context provides a controlled surface area for extensions - they can
// access what they need without reaching into arbitrary internals.
//
// Design: Context uses an interface to enable testing with mock implementations.
// Extensions receive Context during Init(), not at construction, to support
// the two-phase initialization pattern where extensions register before
// the store is available.

package extension

import (
	"database/sql"

	"github.com/mtreilly/mdkb/internal/config"
	"github.com/mtreilly/mdkb/internal/store"
)

// Context provides extensions controlled access to mdkb internals.
// Extensions receive this during initialisation to access shared resources.
type Context interface {
	// Store returns the SQLite-backed store for repo/doc/version CRUD.
	Store() *store.SQLiteStore

	// DB exposes the database for extensions needing custom tables.
	// Extensions should create their own tables, not modify core tables.
	DB() *sql.DB

	// Config returns user configuration for respecting user preferences.
	Config() *config.Config
}

// extContext implements Context.
type extContext struct {
	st  *store.SQLiteStore
	cfg *config.Config
}

// NewContext creates a new extension context.
func NewContext(st *store.SQLiteStore, cfg *config.Config) Context {
	return &extContext{
		st:  st,
		cfg: cfg,
	}
}

// Store returns the store, the primary interface for repo/doc/version CRUD.
func (c *extContext) Store() *store.SQLiteStore {
	return c.st
}

// DB returns the raw database connection for extensions needing custom tables.
func (c *extContext) DB() *sql.DB {
	return c.st.DB()
}

// Config returns the loaded user configuration for respecting preferences.
func (c *extContext) Config() *config.Config {
	return c.cfg
}
