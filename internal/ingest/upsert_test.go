package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mtreilly/mdkb/internal/store"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertCreatesAndUpdatesDoc(t *testing.T) {
	s := openTestStore(t)
	svc := New(s)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "/repo", "repo", "notes/a.md", "# hello\n")
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := svc.Upsert(ctx, "/repo", "repo", "notes/a.md", "# hello\n")
	require.NoError(t, err)
	require.False(t, second.Changed)
	require.Equal(t, first.DocID, second.DocID)

	third, err := svc.Upsert(ctx, "/repo", "repo", "notes/a.md", "# hello again\n")
	require.NoError(t, err)
	require.True(t, third.Changed)
	require.Equal(t, first.DocID, third.DocID)
}

func TestUpsertRejectsContentOverMaxContent(t *testing.T) {
	s := openTestStore(t)
	svc := New(s).WithLimits(10, 10*1024*1024, 0)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "/repo", "repo", "big.md", strings.Repeat("x", 11))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrContentTooLarge))
}

func TestUpsertRejectsLineOverMaxLineLength(t *testing.T) {
	s := openTestStore(t)
	svc := New(s).WithLimits(1<<20, 5, 0)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "/repo", "repo", "long-line.md", "short\nthis line is too long\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLineTooLong))
}

func TestUpsertZeroLimitsDisableEnforcement(t *testing.T) {
	s := openTestStore(t)
	svc := New(s).WithLimits(0, 0, 0)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "/repo", "repo", "unbounded.md", strings.Repeat("y", 100))
	require.NoError(t, err)
}

func TestLongestLine(t *testing.T) {
	require.Equal(t, 0, longestLine(""))
	require.Equal(t, 5, longestLine("hello"))
	require.Equal(t, 3, longestLine("a\nbbb\ncc"))
}
