package ingestion

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/rpattn/liftdesk/internal/domain"
)

// resolver matches human entered names against one tenant's lookup rows.
// Matching is exact after trimming and Unicode case folding. A resolver is
// not safe for concurrent use.
type resolver struct {
	fold   cases.Caser
	byName map[domain.LookupKind]map[string][]domain.Lookup
}

func newResolver(lookups map[domain.LookupKind][]domain.Lookup) *resolver {
	r := &resolver{
		fold:   cases.Fold(),
		byName: make(map[domain.LookupKind]map[string][]domain.Lookup, len(lookups)),
	}
	for kind, rows := range lookups {
		index := make(map[string][]domain.Lookup, len(rows))
		for _, row := range rows {
			key := r.key(row.Name)
			index[key] = append(index[key], row)
		}
		r.byName[kind] = index
	}
	return r
}

func (r *resolver) key(name string) string {
	return r.fold.String(strings.TrimSpace(name))
}

// find returns the first row of kind named name.
func (r *resolver) find(kind domain.LookupKind, name string) (domain.Lookup, bool) {
	rows := r.byName[kind][r.key(name)]
	if len(rows) == 0 {
		return domain.Lookup{}, false
	}
	return rows[0], true
}

// findUnder returns the row of kind named name whose parent is parentID.
// Rows with the same name under other parents never match.
func (r *resolver) findUnder(kind domain.LookupKind, name string, parentID uuid.UUID) (domain.Lookup, bool) {
	for _, row := range r.byName[kind][r.key(name)] {
		if row.ParentID != nil && *row.ParentID == parentID {
			return row, true
		}
	}
	return domain.Lookup{}, false
}

// first returns the alphabetically first row of kind, used for template examples.
func (r *resolver) first(kind domain.LookupKind, parentID *uuid.UUID) (domain.Lookup, bool) {
	var (
		best  domain.Lookup
		found bool
	)
	for _, rows := range r.byName[kind] {
		for _, row := range rows {
			if parentID != nil && (row.ParentID == nil || *row.ParentID != *parentID) {
				continue
			}
			if !found || row.Name < best.Name {
				best, found = row, true
			}
		}
	}
	return best, found
}
