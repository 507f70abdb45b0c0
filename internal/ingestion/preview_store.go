package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rpattn/liftdesk/internal/domain"
)

// StoredPreview is an uploaded file parked between preview and commit.
// Only the raw payload is kept; commit validates it again.
type StoredPreview struct {
	TenantID  uuid.UUID         `json:"tenant_id"`
	Kind      domain.ImportKind `json:"kind"`
	FileName  string            `json:"file_name"`
	Payload   []byte            `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// PreviewStore keeps previews for a limited time under random tokens.
type PreviewStore interface {
	Save(ctx context.Context, preview StoredPreview) (string, error)
	Load(ctx context.Context, token string) (StoredPreview, error)
	Delete(ctx context.Context, token string) error
}

// MemoryPreviewStore is a process local PreviewStore.
type MemoryPreviewStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryPreview
}

type memoryPreview struct {
	preview   StoredPreview
	expiresAt time.Time
}

// NewMemoryPreviewStore creates an in-memory store whose entries expire after ttl.
func NewMemoryPreviewStore(ttl time.Duration) *MemoryPreviewStore {
	return &MemoryPreviewStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]memoryPreview),
	}
}

func (m *MemoryPreviewStore) Save(_ context.Context, preview StoredPreview) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, item := range m.items {
		if now.After(item.expiresAt) {
			delete(m.items, token)
		}
	}

	token := uuid.NewString()
	m.items[token] = memoryPreview{preview: preview, expiresAt: now.Add(m.ttl)}
	return token, nil
}

func (m *MemoryPreviewStore) Load(_ context.Context, token string) (StoredPreview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[token]
	if !ok {
		return StoredPreview{}, ErrPreviewNotFound
	}
	if m.now().After(item.expiresAt) {
		delete(m.items, token)
		return StoredPreview{}, ErrPreviewNotFound
	}
	return item.preview, nil
}

func (m *MemoryPreviewStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, token)
	return nil
}

// RedisPreviewStore shares previews between service replicas.
type RedisPreviewStore struct {
	client *redis.Client
	ttl    time.Duration
}

const previewKeyPrefix = "liftdesk:preview:"

// NewRedisPreviewStore creates a Redis backed store whose keys expire after ttl.
func NewRedisPreviewStore(client *redis.Client, ttl time.Duration) *RedisPreviewStore {
	return &RedisPreviewStore{client: client, ttl: ttl}
}

func (r *RedisPreviewStore) Save(ctx context.Context, preview StoredPreview) (string, error) {
	payload, err := json.Marshal(preview)
	if err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	token := uuid.NewString()
	if err := r.client.Set(ctx, previewKeyPrefix+token, payload, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store preview: %w", err)
	}
	return token, nil
}

func (r *RedisPreviewStore) Load(ctx context.Context, token string) (StoredPreview, error) {
	payload, err := r.client.Get(ctx, previewKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredPreview{}, ErrPreviewNotFound
	}
	if err != nil {
		return StoredPreview{}, fmt.Errorf("failed to load preview: %w", err)
	}
	var preview StoredPreview
	if err := json.Unmarshal(payload, &preview); err != nil {
		return StoredPreview{}, fmt.Errorf("failed to decode preview: %w", err)
	}
	return preview, nil
}

func (r *RedisPreviewStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, previewKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete preview: %w", err)
	}
	return nil
}
