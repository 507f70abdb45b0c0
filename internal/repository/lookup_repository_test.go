package repository

import (
	"strings"
	"testing"

	"github.com/rpattn/liftdesk/internal/domain"
)

func TestBuildLookupUnion_OneBranchPerKind(t *testing.T) {
	query, err := BuildLookupUnion([]domain.LookupKind{
		domain.LookupManagementCompany,
		domain.LookupBuilding,
		domain.LookupManagementCompany,
	}, "$1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Count(query, "UNION ALL"); got != 1 {
		t.Fatalf("expected duplicate kinds to collapse into 2 branches, got %d unions:\n%s", got, query)
	}
	if !strings.Contains(query, "FROM management_companies WHERE tenant_id = $1") {
		t.Fatalf("company branch missing:\n%s", query)
	}
	if !strings.Contains(query, "management_company_id AS parent_id FROM buildings") {
		t.Fatalf("building branch should select its company as parent:\n%s", query)
	}
	if !strings.Contains(query, "CAST(NULL AS uuid) AS parent_id FROM management_companies") {
		t.Fatalf("company branch should have no parent:\n%s", query)
	}
	if !strings.HasSuffix(query, "ORDER BY kind, name") {
		t.Fatalf("expected ordered result:\n%s", query)
	}
}

func TestBuildLookupUnion_RejectsUnknownKind(t *testing.T) {
	if _, err := BuildLookupUnion([]domain.LookupKind{"users; DROP TABLE tenants"}, "$1"); err == nil {
		t.Fatal("expected unknown kind to be rejected")
	}
}
