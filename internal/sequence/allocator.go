// Package sequence mints tenant-unique human readable codes such as J-000042.
//
// Counters live in the store and are only ever advanced through the
// repository's atomic fetch-and-add, so the allocator itself holds no state.
// Call it with a context that carries the surrounding transaction: a
// rollback then also returns the reserved integers.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/repository"
)

// Block is a contiguous run of reserved integers in one code domain.
type Block struct {
	Domain domain.CodeDomain
	First  int64
	Count  int64
}

// Code returns the code of the i-th integer of the block (zero based).
func (b Block) Code(i int) string {
	return domain.FormatCode(b.Domain, b.First+int64(i))
}

// Allocator reserves code blocks through a SequenceRepository.
type Allocator struct {
	store    repository.SequenceRepository
	reserved *prometheus.CounterVec
}

// NewAllocator creates an allocator. Reserved integers are counted on reg when it is not nil.
func NewAllocator(store repository.SequenceRepository, reg prometheus.Registerer) *Allocator {
	reserved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftdesk",
		Subsystem: "sequence",
		Name:      "codes_reserved_total",
		Help:      "Number of record codes reserved, by code domain.",
	}, []string{"domain"})
	if reg != nil {
		reserved = registerCounterVec(reg, reserved)
	}
	return &Allocator{store: store, reserved: reserved}
}

// Reserve atomically reserves n consecutive integers for tenantID in codeDomain.
func (a *Allocator) Reserve(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain, n int) (Block, error) {
	if !codeDomain.Valid() {
		return Block{}, fmt.Errorf("unknown code domain %q", codeDomain)
	}
	if n < 1 {
		return Block{}, fmt.Errorf("block size must be positive, got %d", n)
	}
	first, err := a.store.Reserve(ctx, tenantID, codeDomain, int64(n))
	if err != nil {
		return Block{}, err
	}
	return Block{Domain: codeDomain, First: first, Count: int64(n)}, nil
}

// Committed counts blocks whose transaction has committed. Blocks from a
// rolled back transaction were handed back to the sequence and must not be passed.
func (a *Allocator) Committed(blocks ...Block) {
	for _, b := range blocks {
		a.reserved.WithLabelValues(string(b.Domain)).Add(float64(b.Count))
	}
}

// Peek returns the code the next reservation would receive without consuming it.
func (a *Allocator) Peek(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain) (string, error) {
	if !codeDomain.Valid() {
		return "", fmt.Errorf("unknown code domain %q", codeDomain)
	}
	next, err := a.store.Peek(ctx, tenantID, codeDomain)
	if err != nil {
		return "", err
	}
	return domain.FormatCode(codeDomain, next), nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}
