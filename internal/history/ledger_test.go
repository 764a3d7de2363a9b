// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", "history.db")
	l, err := OpenLedger(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestLedger_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	require.NoError(t, l.Append(ctx, "gpt-4o-mini", []string{"Neon Nights", "Glass River"}))
	require.NoError(t, l.Append(ctx, "gpt-4o-mini", []string{"Glass River", "Last Train"}))

	values, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Neon Nights", "Glass River", "Last Train"}, values)
}

func TestLedger_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	l, path := openTestLedger(t)

	require.NoError(t, l.Append(ctx, "p", []string{"one"}))
	require.NoError(t, l.Close())

	reopened, err := OpenLedger(path)
	require.NoError(t, err)
	defer reopened.Close()

	values, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, values)
}

func TestLedger_Clear(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	require.NoError(t, l.Append(ctx, "p", []string{"one", "two"}))
	require.NoError(t, l.Clear(ctx))

	values, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLedger_EmptyAppend(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)

	require.NoError(t, l.Append(ctx, "p", nil))

	values, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}
