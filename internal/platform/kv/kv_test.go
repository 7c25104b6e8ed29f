package kv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/crypto"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	lite, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })
	return map[string]Backend{
		"memory": NewMemory(0),
		"sqlite": lite,
	}
}

func TestBackendContract(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := b.Get(ctx, "employees")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, b.Set(ctx, "employees", "[]"))
			require.NoError(t, b.Set(ctx, "employees", `[{"id":"emp_1"}]`))
			value, ok, err := b.Get(ctx, "employees")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"emp_1"}]`, value)

			require.NoError(t, b.SetMulti(ctx, map[string]string{"timeTracking": "[1]", "users": "[2]"}))
			keys, err := b.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"employees", "timeTracking", "users"}, keys)

			require.NoError(t, b.Delete(ctx, "users"))
			_, ok, err = b.Get(ctx, "users")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, b.Clear(ctx))
			keys, err = b.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
			require.NoError(t, b.Ping(ctx))
		})
	}
}

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(20)

	require.NoError(t, m.Set(ctx, "a", strings.Repeat("x", 10)))
	err := m.Set(ctx, "b", strings.Repeat("x", 10))
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	// Replacing an existing value only counts the difference.
	require.NoError(t, m.Set(ctx, "a", strings.Repeat("y", 19)))
}

func TestMemorySetMultiIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(16)

	err := m.SetMulti(ctx, map[string]string{"a": "12345", "b": strings.Repeat("z", 20)})
	require.ErrorIs(t, err, ErrQuotaExceeded)

	_, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "partial batch must not be visible")
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory(0)
	require.NoError(t, m.Close())
	_, _, err := m.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEncryptedSealsValues(t *testing.T) {
	ctx := context.Background()
	svc, err := crypto.New("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)

	inner := NewMemory(0)
	enc := NewEncrypted(inner, svc)
	require.NoError(t, enc.Set(ctx, "employees", `[{"name":"Ana"}]`))
	require.NoError(t, enc.SetMulti(ctx, map[string]string{"users": `[{"username":"admin"}]`}))

	raw, _, err := inner.Get(ctx, "employees")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Ana")

	plain, ok, err := enc.Get(ctx, "employees")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"Ana"}]`, plain)

	plain, _, err = enc.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"username":"admin"}]`, plain)
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, config.Config{StoreDriver: "memory"})
	require.NoError(t, err)
	_, isMemory := b.(*Memory)
	assert.True(t, isMemory)

	b, err = Open(ctx, config.Config{StoreDriver: "sqlite", SQLitePath: ":memory:", DataEncryptionKey: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"})
	require.NoError(t, err)
	defer b.Close()
	_, isEncrypted := b.(*Encrypted)
	assert.True(t, isEncrypted)

	_, err = Open(ctx, config.Config{StoreDriver: "dynamo"})
	assert.Error(t, err)
}
