package entityloader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// LookupLoader batches lookup table reads. Keys are "<tenant>|<kind>" and
// every batch issues one ListByKinds call per tenant.
type LookupLoader struct {
	Loader *dataloader.Loader
}

func NewLookupLoader(repo repository.LookupRepository) *LookupLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		// Group requested kinds by tenant, remembering each key's position
		type request struct {
			index int
			kind  domain.LookupKind
		}
		byTenant := make(map[uuid.UUID][]request)
		for i, k := range keys {
			tenantID, kind, err := splitKey(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: err}
				continue
			}
			byTenant[tenantID] = append(byTenant[tenantID], request{index: i, kind: kind})
		}

		for tenantID, requests := range byTenant {
			kinds := make([]domain.LookupKind, len(requests))
			for i, req := range requests {
				kinds[i] = req.kind
			}

			lookups, err := repo.ListByKinds(ctx, tenantID, kinds)
			for _, req := range requests {
				if err != nil {
					results[req.index] = &dataloader.Result{Error: err}
					continue
				}
				results[req.index] = &dataloader.Result{Data: lookups[req.kind]}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &LookupLoader{Loader: loader}
}

// Load returns the tenant's rows for each requested kind. Kinds without rows map to an empty slice.
func (l *LookupLoader) Load(ctx context.Context, tenantID uuid.UUID, kinds []domain.LookupKind) (map[domain.LookupKind][]domain.Lookup, error) {
	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = Key(tenantID, kind)
	}

	data, errs := l.Loader.LoadMany(ctx, dataloader.NewKeysFromStrings(keys))()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load lookups: %w", err)
		}
	}

	out := make(map[domain.LookupKind][]domain.Lookup, len(kinds))
	for i, kind := range kinds {
		rows, _ := data[i].([]domain.Lookup)
		out[kind] = rows
	}
	return out, nil
}

// Key renders the loader key for one tenant lookup table.
func Key(tenantID uuid.UUID, kind domain.LookupKind) string {
	return tenantID.String() + "|" + string(kind)
}

func splitKey(key string) (uuid.UUID, domain.LookupKind, error) {
	rawTenant, rawKind, ok := strings.Cut(key, "|")
	if !ok {
		return uuid.Nil, "", fmt.Errorf("malformed lookup key %q", key)
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid UUID: %w", err)
	}
	kind := domain.LookupKind(rawKind)
	if !kind.Valid() {
		return uuid.Nil, "", fmt.Errorf("unknown lookup kind %q", rawKind)
	}
	return tenantID, kind, nil
}
