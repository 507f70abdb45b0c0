package ingestion

import (
	"errors"

	"github.com/rpattn/liftdesk/internal/auth"
)

// Whole-import failures. Per-row problems are never errors; they are
// reported through Invalid outcomes.
var (
	ErrPermissionDenied = auth.ErrPermissionDenied
	ErrTenantRequired   = auth.ErrTenantRequired
	ErrEmptyFile        = errors.New("the uploaded file contains no data rows")
	ErrNoValidRows      = errors.New("no valid rows to import")
	ErrCommitFailed     = errors.New("import failed, no rows were imported")
	ErrPreviewNotFound  = errors.New("preview not found or expired")
)
