// Package records creates business records with freshly minted codes.
package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/repository"
	"github.com/rpattn/liftdesk/internal/sequence"
)

// ErrTenantMismatch is returned when a record does not belong to the tenant being written.
var ErrTenantMismatch = errors.New("record belongs to another tenant")

// Writer inserts records inside one transaction, numbering them from a
// single reserved block per code domain.
type Writer struct {
	uow       repository.UnitOfWork
	allocator *sequence.Allocator
	records   repository.RecordRepository
}

// NewWriter wires a writer.
func NewWriter(uow repository.UnitOfWork, allocator *sequence.Allocator, records repository.RecordRepository) *Writer {
	return &Writer{uow: uow, allocator: allocator, records: records}
}

// Create inserts a single record. It goes through the same reservation path as CreateBatch.
func (w *Writer) Create(ctx context.Context, record domain.Record) (domain.Record, error) {
	created, err := w.CreateBatch(ctx, record.Tenant(), []domain.Record{record})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateBatch inserts every record or none of them. Codes follow input
// order within each code domain. The returned slice carries the codes and
// identifiers assigned by the store.
func (w *Writer) CreateBatch(ctx context.Context, tenantID uuid.UUID, batch []domain.Record) ([]domain.Record, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	counts := make(map[domain.CodeDomain]int)
	order := make([]domain.CodeDomain, 0, 1)
	for i, record := range batch {
		if record.Tenant() != tenantID {
			return nil, fmt.Errorf("record %d: %w", i, ErrTenantMismatch)
		}
		d := record.Kind().CodeDomain()
		if d == "" {
			continue
		}
		if counts[d] == 0 {
			order = append(order, d)
		}
		counts[d]++
	}

	created := make([]domain.Record, len(batch))
	blocks := make(map[domain.CodeDomain]sequence.Block, len(order))
	err := w.uow.InTx(ctx, func(ctx context.Context) error {
		for _, d := range order {
			block, err := w.allocator.Reserve(ctx, tenantID, d, counts[d])
			if err != nil {
				return err
			}
			blocks[d] = block
		}

		used := make(map[domain.CodeDomain]int, len(order))
		for i, record := range batch {
			if d := record.Kind().CodeDomain(); d != "" {
				record = record.WithCode(blocks[d].Code(used[d]))
				used[d]++
			}
			saved, err := w.insert(ctx, record)
			if err != nil {
				return err
			}
			created[i] = saved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, d := range order {
		w.allocator.Committed(blocks[d])
	}
	return created, nil
}

// NextCode returns the code the next record of kind would receive, or ""
// for kinds that carry no code. Nothing is reserved.
func (w *Writer) NextCode(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind) (string, error) {
	d := kind.CodeDomain()
	if d == "" {
		return "", nil
	}
	return w.allocator.Peek(ctx, tenantID, d)
}

func (w *Writer) insert(ctx context.Context, record domain.Record) (domain.Record, error) {
	switch r := record.(type) {
	case domain.Job:
		saved, err := w.records.CreateJob(ctx, r)
		return saved, err
	case domain.EmergencyCall:
		saved, err := w.records.CreateEmergencyCall(ctx, r)
		return saved, err
	case domain.Inspection:
		saved, err := w.records.CreateInspection(ctx, r)
		return saved, err
	case domain.MaintenanceRecord:
		saved, err := w.records.CreateMaintenanceRecord(ctx, r)
		return saved, err
	case domain.Unit:
		saved, err := w.records.CreateUnit(ctx, r)
		return saved, err
	default:
		return nil, fmt.Errorf("unsupported record type %T", record)
	}
}
