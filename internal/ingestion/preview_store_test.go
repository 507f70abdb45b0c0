package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/liftdesk/internal/domain"
)

func TestMemoryPreviewStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryPreviewStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	preview := StoredPreview{TenantID: uuid.New(), Kind: domain.ImportJobs, FileName: "jobs.csv", Payload: []byte("a")}
	token, err := store.Save(ctx, preview)
	require.NoError(t, err)

	got, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, preview, got)

	now = now.Add(11 * time.Minute)
	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestMemoryPreviewStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPreviewStore(time.Minute)

	token, err := store.Save(ctx, StoredPreview{TenantID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	_, err = store.Load(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func newRedisPreviewStore(t *testing.T, ttl time.Duration) (*RedisPreviewStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPreviewStore(client, ttl), server
}

func TestRedisPreviewStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisPreviewStore(t, 15*time.Minute)

	preview := StoredPreview{
		TenantID:  uuid.New(),
		Kind:      domain.ImportUnits,
		FileName:  "units.csv",
		Payload:   []byte("Management Company,Building,Unit Name\n"),
		CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	token, err := store.Save(ctx, preview)
	require.NoError(t, err)
	assert.True(t, server.Exists(previewKeyPrefix+token))
	assert.Equal(t, 15*time.Minute, server.TTL(previewKeyPrefix+token))

	got, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, preview, got)

	require.NoError(t, store.Delete(ctx, token))
	assert.False(t, server.Exists(previewKeyPrefix+token))
	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestRedisPreviewStoreExpires(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisPreviewStore(t, time.Minute)

	token, err := store.Save(ctx, StoredPreview{TenantID: uuid.New(), Kind: domain.ImportJobs})
	require.NoError(t, err)

	server.FastForward(time.Minute + time.Second)
	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	_, err = store.Load(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestRedisPreviewStoreReportsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisPreviewStore(t, time.Minute)

	require.NoError(t, server.Set(previewKeyPrefix+"garbled", "{not json"))
	_, err := store.Load(ctx, "garbled")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPreviewNotFound)
	assert.Contains(t, err.Error(), "failed to decode preview")
}

func TestRedisPreviewStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisPreviewStore(t, time.Minute)
	server.Close()

	_, err := store.Save(ctx, StoredPreview{TenantID: uuid.New()})
	assert.ErrorContains(t, err, "failed to store preview")

	_, err = store.Load(ctx, "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPreviewNotFound)
}
