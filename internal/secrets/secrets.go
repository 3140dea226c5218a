// Package secrets implements the provider-key collaborator spec.md §4.8
// step 6 requires, grounded on original_source/src-tauri/src/secrets.rs's
// provider_key_set/provider_key_exists/provider_key_get. The Rust original
// has an OS-keyring mode behind a cargo feature flag and a DB-fallback mode;
// no OS-keyring library appears anywhere in the example pack (the corpus's
// only golang.org/x/crypto usage targets bcrypt/ssh, not a keychain), so
// this package implements the DB-fallback mode only — the existence flag,
// never the key material, is what persists (see DESIGN.md).
package secrets

import (
	"context"
	"errors"

	"github.com/mtreilly/mdkb/internal/store"
)

// ErrKeyringNotEnabled mirrors the Rust original's provider_key_get
// behavior without the keyring feature: never leak secret material through
// a channel that doesn't have a real secure store backing it.
var ErrKeyringNotEnabled = errors.New("keyring_not_enabled")

// Store is the DB-backed provider-key collaborator. It satisfies
// aidispatch.KeyChecker.
type Store struct {
	store *store.SQLiteStore
}

func New(s *store.SQLiteStore) *Store {
	return &Store{store: s}
}

// SetKey flags that a key has been configured for provider name. Per the
// fallback mode, the key value itself is discarded — only the flag persists.
func (s *Store) SetKey(ctx context.Context, name, _key string) error {
	return s.store.MarkProviderKeySet(ctx, name)
}

// KeyExists reports whether SetKey has been called for this provider,
// satisfying aidispatch.KeyChecker.
func (s *Store) KeyExists(name string) bool {
	ok, err := s.store.ProviderKeyFlagSet(context.Background(), name)
	if err != nil {
		return false
	}
	return ok
}

// GetKey always fails in fallback mode — there is no secure channel to
// recover key material from a flag.
func (s *Store) GetKey(name string) (string, error) {
	return "", ErrKeyringNotEnabled
}
