package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/liftdesk/internal/domain"
)

type memorySequences struct {
	mu   sync.Mutex
	next map[string]int64
	err  error
}

func newMemorySequences() *memorySequences {
	return &memorySequences{next: map[string]int64{}}
}

func (m *memorySequences) key(tenantID uuid.UUID, d domain.CodeDomain) string {
	return tenantID.String() + "|" + string(d)
}

func (m *memorySequences) Reserve(_ context.Context, tenantID uuid.UUID, d domain.CodeDomain, count int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(tenantID, d)
	if m.next[k] == 0 {
		m.next[k] = 1
	}
	first := m.next[k]
	m.next[k] += count
	return first, nil
}

func (m *memorySequences) Peek(_ context.Context, tenantID uuid.UUID, d domain.CodeDomain) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.next[m.key(tenantID, d)]; n > 0 {
		return n, nil
	}
	return 1, nil
}

func TestAllocatorFirstCodeIsOne(t *testing.T) {
	alloc := NewAllocator(newMemorySequences(), nil)

	block, err := alloc.Reserve(context.Background(), uuid.New(), domain.CodeDomainJob, 1)
	require.NoError(t, err)
	assert.Equal(t, "J-000001", block.Code(0))
}

func TestAllocatorBlockAdvancesByCount(t *testing.T) {
	store := newMemorySequences()
	alloc := NewAllocator(store, nil)
	ctx := context.Background()
	tenant := uuid.New()

	block, err := alloc.Reserve(ctx, tenant, domain.CodeDomainEmergency, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), block.Count)
	assert.Equal(t, "E-000001", block.Code(0))
	assert.Equal(t, "E-000005", block.Code(4))

	next, err := alloc.Peek(ctx, tenant, domain.CodeDomainEmergency)
	require.NoError(t, err)
	assert.Equal(t, "E-000006", next)

	second, err := alloc.Reserve(ctx, tenant, domain.CodeDomainEmergency, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(6), second.First)
}

func TestAllocatorRejectsBadInput(t *testing.T) {
	alloc := NewAllocator(newMemorySequences(), nil)
	ctx := context.Background()

	_, err := alloc.Reserve(ctx, uuid.New(), domain.CodeDomain("invoice"), 1)
	assert.Error(t, err)

	_, err = alloc.Reserve(ctx, uuid.New(), domain.CodeDomainJob, 0)
	assert.Error(t, err)
}

func TestAllocatorPropagatesStoreError(t *testing.T) {
	store := newMemorySequences()
	store.err = errors.New("connection reset")
	alloc := NewAllocator(store, nil)

	_, err := alloc.Reserve(context.Background(), uuid.New(), domain.CodeDomainInspection, 1)
	assert.ErrorIs(t, err, store.err)
}

func TestAllocatorPeekDoesNotConsume(t *testing.T) {
	alloc := NewAllocator(newMemorySequences(), nil)
	ctx := context.Background()
	tenant := uuid.New()

	for i := 0; i < 2; i++ {
		next, err := alloc.Peek(ctx, tenant, domain.CodeDomainJob)
		require.NoError(t, err)
		assert.Equal(t, "J-000001", next)
	}

	_, err := alloc.Peek(ctx, tenant, domain.CodeDomain("invoice"))
	assert.Error(t, err)
}

func TestAllocatorCountsOnlyCommittedCodes(t *testing.T) {
	reg := prometheus.NewRegistry()
	alloc := NewAllocator(newMemorySequences(), reg)
	ctx := context.Background()

	first, err := alloc.Reserve(ctx, uuid.New(), domain.CodeDomainMaintenance, 4)
	require.NoError(t, err)
	second, err := alloc.Reserve(ctx, uuid.New(), domain.CodeDomainMaintenance, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(alloc.reserved.WithLabelValues("maintenance")))

	alloc.Committed(first, second)
	assert.Equal(t, float64(5), testutil.ToFloat64(alloc.reserved.WithLabelValues("maintenance")))

	// a second allocator on the same registry shares the collector
	again := NewAllocator(newMemorySequences(), reg)
	assert.Same(t, alloc.reserved, again.reserved)
}
