package appstate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "k", "v1"))
			require.NoError(t, s.Set(ctx, "k", "v2"))
			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.Delete(ctx, "k"))
			_, ok, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOnboardingFlag(t *testing.T) {
	ctx := context.Background()
	st := New(NewMemoryStore())

	done, err := st.Onboarded(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, st.CompleteOnboarding(ctx))
	done, err = st.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, st.ResetOnboarding(ctx))
	done, err = st.Onboarded(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestOnboardingIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "onboarded", "maybe"))

	done, err := New(mem).Onboarded(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestOnboardingPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s1, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, New(s1).CompleteOnboarding(ctx))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	st := New(s2)
	defer st.Close()

	done, err := st.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSQLiteClosedStoreErrors(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = New(s).Onboarded(ctx)
	assert.Error(t, err)
}
