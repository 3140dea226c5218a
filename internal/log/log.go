// Package log provides centralised audit logging for mdkb operations.
// Logs are stored in ~/.mdkb/log/mdkb-log.db and track all CLI commands
// and RPC/MCP method invocations across repos.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("core:init", "init").
//		Author(cmd.Author()).
//		Write(err)
//
//	log.Event("rpc:search", "search").
//		Author("mcp").
//		Detail("query", query).
//		Detail("count", len(results)).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "rpc:{method}"/"mcp:{tool}" for the JSON-RPC and MCP surfaces.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g., "core:init", "rpc:docs_create", "mcp:mdkb_search"
	Author string // who performed the action
	Action string // verb: create, update, delete, search, scan, etc.

	RepoID    int64  // input: repo this operation targeted, 0 if none
	DocSlug   string // input: doc slug this operation targeted, if any
	VersionID int64  // input: version id requested, 0 if unset

	// Output fields - populated after operation succeeds
	ResultDocID   int64 // output: doc id created or accessed
	ResultVersion int64 // output: version id created

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - CLI commands: "{extension}:{command}" (e.g., "core:init", "core:config")
//   - RPC/MCP methods: "rpc:{method}" or "mcp:{tool}" (e.g., "rpc:docs_create")
//
// The action describes what operation was performed:
//   - "create", "update", "delete", "search", "scan", "list", etc.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Author sets who performed the operation.
//
// For CLI commands, use cmd.Author() which returns the configured author.
// For RPC/MCP calls, use "rpc" or "mcp" as the author.
func (b *Builder) Author(author string) *Builder {
	b.entry.Author = author
	return b
}

// Repo sets the repo id this operation targeted.
func (b *Builder) Repo(repoID int64) *Builder {
	b.entry.RepoID = repoID
	return b
}

// Doc sets the doc slug this operation affects.
//
// Use for operations that target a specific document. Leave unset for
// operations that don't target a document (e.g., config, repos_list).
func (b *Builder) Doc(slug string) *Builder {
	b.entry.DocSlug = slug
	return b
}

// Version sets the input version id requested by this operation.
func (b *Builder) Version(versionID int64) *Builder {
	b.entry.VersionID = versionID
	return b
}

// ResultDoc sets the doc id created or accessed (output).
func (b *Builder) ResultDoc(docID int64) *Builder {
	b.entry.ResultDocID = docID
	return b
}

// ResultVersion sets the version id that resulted from the operation (output).
func (b *Builder) ResultVersion(versionID int64) *Builder {
	b.entry.ResultVersion = versionID
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// search queries, result counts, source/destination repos, etc.
// Can be called multiple times to add multiple details.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute path to the .mdkb directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
