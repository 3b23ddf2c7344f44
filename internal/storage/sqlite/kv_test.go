package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/utafrali/storefront/internal/storage"
)

var _ storage.KV = (*KV)(nil)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage path is required")
}

func TestKV_SetGetOverwrite(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "sm_token")
	assert.True(t, storage.IsNotFound(err))

	require.NoError(t, kv.Set(ctx, "sm_token", "first"))
	require.NoError(t, kv.Set(ctx, "sm_token", "second"))

	got, err := kv.Get(ctx, "sm_token")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestKV_Delete(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "sm_role", "admin"))
	require.NoError(t, kv.Delete(ctx, "sm_role"))
	require.NoError(t, kv.Delete(ctx, "sm_role"))

	_, err := kv.Get(ctx, "sm_role")
	assert.True(t, storage.IsNotFound(err))
}

func TestKV_FilePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	kv, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "sm_cart_v1", `[{"product":{"id":1,"name":"Milk","price":5},"qty":2}]`))
	require.NoError(t, kv.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "sm_cart_v1")
	require.NoError(t, err)
	assert.Contains(t, got, `"qty":2`)
	assert.NoError(t, reopened.Ping(ctx))
}

func TestKV_Stats(t *testing.T) {
	kv := openTestKV(t)

	stats := kv.Stats()
	assert.Equal(t, int64(1), stats.Max)
	assert.Equal(t, int64(1), stats.Total)
}

func TestKV_TracesStatements(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	kv := openTestKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "sm_token", "abc"))
	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "db.kv.set", spans[0].Name)
	assert.Equal(t, "db.kv.get", spans[1].Name)
}
