package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportRun records the outcome of one commit attempt. Row level validation
// errors are never stored here; they only live in the preview response.
type ImportRun struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Kind         ImportKind `json:"kind"`
	FileName     string     `json:"file_name"`
	ActorID      string     `json:"actor_id,omitempty"`
	Imported     int        `json:"imported"`
	Skipped      int        `json:"skipped"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Succeeded reports whether the run committed its rows.
func (r ImportRun) Succeeded() bool {
	return r.ErrorMessage == ""
}
