package aidispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mtreilly/mdkb/internal/store"
)

// Sentinel error-kind strings (spec.md §7).
var (
	ErrProviderDisabled = errors.New("provider_disabled")
	ErrNoKey            = errors.New("no_key")
)

// KeyChecker is the "key-exists collaborator" spec.md §4.8 step 6 requires
// for remote providers — implemented by internal/secrets.
type KeyChecker interface {
	KeyExists(provider string) bool
}

// RemoteCaller dispatches a redacted prompt+context to a remote provider
// (spec.md §4.8 step 7, "openrouter" branch).
type RemoteCaller interface {
	Call(ctx context.Context, provider, prompt, redactedContext string) (text, model string, err error)
}

// Dispatcher wires the store, key checker, and remote caller together to
// run ai_run end to end.
type Dispatcher struct {
	Store  *store.SQLiteStore
	Keys   KeyChecker
	Remote RemoteCaller
}

func New(s *store.SQLiteStore, keys KeyChecker, remote RemoteCaller) *Dispatcher {
	return &Dispatcher{Store: s, Keys: keys, Remote: remote}
}

// Request is the ai_run input (spec.md §4.8).
type Request struct {
	Provider string
	DocID    string // numeric id or slug
	AnchorID string
	Line     int // 0 means "unset"
	Prompt   string
}

// Result is the ai_run output.
type Result struct {
	TraceID  string `json:"trace_id"`
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Run executes spec.md §4.8 steps 1-8.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Result, error) {
	var result Result

	err := d.Store.Tx(ctx, func(tx *sql.Tx) error {
		body, repoID, docID, err := lookupDoc(ctx, tx, req.DocID)
		if err != nil {
			return err
		}

		provider, err := resolveProvider(ctx, tx, repoID, req.Provider)
		if err != nil {
			return err
		}

		line := req.Line
		if line == 0 {
			line = 1
		}
		if req.AnchorID != "" {
			if parsed, ok := parseAnchorLine(req.AnchorID); ok {
				line = parsed
			}
		}

		window := extractContext(body, line, 12)
		redacted := Redact(window)

		row, err := store.ProviderByNameTx(ctx, tx, provider)
		if err != nil {
			return err
		}
		if !row.Enabled {
			return ErrProviderDisabled
		}
		if row.Kind == "remote" {
			if d.Keys == nil || !d.Keys.KeyExists(provider) {
				return ErrNoKey
			}
		}

		text, model, dispatchErr := d.dispatch(ctx, provider, req.Prompt, redacted)
		if dispatchErr != nil {
			text = fmt.Sprintf("[%s:error] %s", provider, dispatchErr.Error())
		}

		reqJSON, _ := json.Marshal(map[string]string{"prompt": req.Prompt, "context": redacted})
		respJSON, _ := json.Marshal(map[string]string{"text": text})

		traceRowID, err := store.InsertAiTraceTx(ctx, tx, repoID, docID, req.AnchorID, provider, string(reqJSON), string(respJSON), 0, 0, 0)
		if err != nil {
			return err
		}

		result = Result{TraceID: strconv.FormatInt(traceRowID, 10), Text: text, Provider: provider, Model: model}
		return nil
	})
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, provider, prompt, redacted string) (text, model string, err error) {
	switch provider {
	case "openrouter":
		if d.Remote == nil {
			return "", "", fmt.Errorf("remote caller not configured")
		}
		return d.Remote.Call(ctx, provider, prompt, redacted)
	default:
		return fmt.Sprintf("[%s]\nPrompt: %s\n---\n%s", provider, prompt, redacted), "local", nil
	}
}

func lookupDoc(ctx context.Context, tx *sql.Tx, idOrSlug string) (body string, repoID, docID int64, err error) {
	row := tx.QueryRowContext(ctx, `
		SELECT f.body, d.repo_id, d.id
		FROM doc_fts f
		JOIN doc d ON d.id = f.rowid
		WHERE d.id = ? OR d.slug = ?
	`, idOrSlug, idOrSlug)
	if err := row.Scan(&body, &repoID, &docID); err != nil {
		return "", 0, 0, store.ErrNotFound
	}
	return body, repoID, docID, nil
}

// resolveProvider implements spec.md §4.8 step 2: explicit provider, else
// repo.settings.default_provider, else app setting default_provider, else
// "local".
func resolveProvider(ctx context.Context, tx *sql.Tx, repoID int64, explicit string) (string, error) {
	if explicit != "" && explicit != "default" {
		return explicit, nil
	}

	var settingsJSON string
	if err := tx.QueryRowContext(ctx, `SELECT settings FROM repo WHERE id = ?`, repoID).Scan(&settingsJSON); err == nil {
		var settings struct {
			DefaultProvider string `json:"default_provider"`
		}
		if json.Unmarshal([]byte(settingsJSON), &settings) == nil && settings.DefaultProvider != "" {
			return settings.DefaultProvider, nil
		}
	}

	var appValue string
	if err := tx.QueryRowContext(ctx, `SELECT value FROM app_setting WHERE key = 'default_provider'`).Scan(&appValue); err == nil {
		var v string
		if json.Unmarshal([]byte(appValue), &v) == nil && v != "" {
			return v, nil
		}
	}

	return "local", nil
}

// parseAnchorLine parses "anc_<doc>_<line>" or "anc_<doc>_<line>_<ver>",
// per original_source's parse_anchor_line.
func parseAnchorLine(anchorID string) (int, bool) {
	parts := strings.Split(anchorID, "_")
	if len(parts) < 3 {
		return 0, false
	}
	if n, err := strconv.Atoi(parts[len(parts)-2]); err == nil {
		return n, true
	}
	if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
		return n, true
	}
	return 0, false
}

// extractContext returns a ±n line window around the 1-indexed target
// line, clamped to the body (spec.md §4.8 step 4).
func extractContext(body string, line, n int) string {
	lines := strings.Split(body, "\n")
	if len(lines) == 0 {
		return ""
	}
	idx := line - 1
	if idx < 0 {
		idx = 0
	}
	start := idx - n
	if start < 0 {
		start = 0
	}
	end := idx + n + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
