package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSQLiteStore_SetGetRemove(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, map[string]string{
		"prompts":  `[{"id":"a"}]`,
		"settings": `{"search_context":"backend"}`,
	}))

	values, err := st.Get(ctx, "prompts", "settings", "missing")
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, `[{"id":"a"}]`, values["prompts"])
	require.Equal(t, `{"search_context":"backend"}`, values["settings"])

	require.NoError(t, st.Remove(ctx, "settings"))
	values, err = st.Get(ctx, "settings")
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestSQLiteStore_SetOverwritesExisting(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, map[string]string{"prompts": "v1"}))
	require.NoError(t, st.Set(ctx, map[string]string{"prompts": "v2"}))

	values, err := st.Get(ctx, "prompts")
	require.NoError(t, err)
	require.Equal(t, "v2", values["prompts"])
}

func TestSQLiteStore_GetNoKeys(t *testing.T) {
	st := openTestStore(t)
	values, err := st.Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestSQLiteStore_RejectsOversizedValue(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	big := strings.Repeat("x", MaxValueBytes+1)
	err := st.Set(ctx, map[string]string{"prompts": big})
	require.Error(t, err)

	// Nothing was persisted.
	values, err := st.Get(ctx, "prompts")
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestSQLiteStore_RemoveMissingKeyIsNoError(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Remove(context.Background(), "never-written"))
}
