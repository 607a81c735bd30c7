package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the contract every Backend must satisfy.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Read(ctx, "missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, b.Write(ctx, KeyInvoices, []byte(`[{"id":"a"}]`)))
	got, err := b.Read(ctx, KeyInvoices)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, b.Write(ctx, KeyInvoices, []byte(`[]`)))
	got, err = b.Read(ctx, KeyInvoices)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, b.Write(ctx, KeyBusinessInfo, []byte(`Northwind`)))
	got, err = b.Read(ctx, KeyBusinessInfo)
	require.NoError(t, err)
	assert.Equal(t, `Northwind`, string(got))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	exerciseBackend(t, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"invoices.json", "businessInfo.json"}, names, "no temp files left behind")
}

func TestFileBackend_RejectsUnsafeKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, b.Write(context.Background(), "../escape", []byte("x")))
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.db")
	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	exerciseBackend(t, b)
	require.NoError(t, b.Close())

	// Values survive reopening the database.
	b, err = NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b.Close()
	got, err := b.Read(context.Background(), KeyInvoices)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	b, err := NewRedisBackend(context.Background(), RedisOptions{
		Addr:   addr,
		Prefix: "invoicer-test:" + t.Name() + ":",
	})
	require.NoError(t, err)
	defer b.Close()
	exerciseBackend(t, b)
}

func TestWithCapacity(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	require.NoError(t, inner.Write(ctx, KeyBusinessInfo, []byte("0123456789")))

	// businessInfo already costs 12+10 = 22 bytes.
	b := WithCapacity(inner, 40, KeyInvoices, KeyBusinessInfo)

	require.NoError(t, b.Write(ctx, KeyInvoices, []byte("12345678"))) // 8+8 = 16, total 38

	err := b.Write(ctx, KeyInvoices, []byte("1234567890")) // 18, total 40
	require.NoError(t, err)

	err = b.Write(ctx, KeyInvoices, []byte("12345678901")) // 19, total 41
	require.ErrorIs(t, err, ErrCapacityExceeded)

	got, err := b.Read(ctx, KeyInvoices)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", string(got), "failed write must not change the value")

	// Shrinking one key frees room for the other.
	require.NoError(t, b.Write(ctx, KeyBusinessInfo, []byte("")))
	require.NoError(t, b.Write(ctx, KeyInvoices, []byte("12345678901")))
}

func TestWithCapacity_Disabled(t *testing.T) {
	inner := NewMemoryBackend()
	assert.Same(t, Backend(inner), WithCapacity(inner, 0))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, BackendConfig{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(ctx, BackendConfig{Kind: KindFile, Path: t.TempDir(), CapacityBytes: 1024})
	require.NoError(t, err)
	assert.IsType(t, &capacityBackend{}, b)
	exerciseBackend(t, b)

	dir := t.TempDir()
	b, err = Open(ctx, BackendConfig{Kind: KindSQLite, Path: dir})
	require.NoError(t, err)
	defer b.Close()
	assert.FileExists(t, filepath.Join(dir, "invoices.db"))

	_, err = Open(ctx, BackendConfig{Kind: "floppy"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
