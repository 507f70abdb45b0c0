// Package ingestion turns uploaded CSV and XLSX files into business records.
//
// An upload is mapped against the header contract of its import kind,
// every row is resolved and validated on its own, and the valid rows are
// committed together: either all of them are created, with codes taken from
// one reserved block, or none are.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/liftdesk/internal/auth"
	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/entityloader"
	"github.com/rpattn/liftdesk/internal/middleware"
	"github.com/rpattn/liftdesk/internal/records"
	"github.com/rpattn/liftdesk/internal/repository"
)

const defaultPreviewRowLimit = 50

// Service validates and imports tabular uploads.
type Service struct {
	lookups         repository.LookupRepository
	writer          *records.Writer
	runs            repository.ImportRunRepository
	previews        PreviewStore
	permissions     auth.PermissionChecker
	metrics         *Metrics
	logger          logrus.FieldLogger
	previewRowLimit int
	now             func() time.Time
}

// Dependencies are the collaborators of a Service. Previews, Permissions,
// Metrics and Logger are optional.
type Dependencies struct {
	Lookups         repository.LookupRepository
	Writer          *records.Writer
	Runs            repository.ImportRunRepository
	Previews        PreviewStore
	Permissions     auth.PermissionChecker
	Metrics         *Metrics
	Logger          logrus.FieldLogger
	PreviewRowLimit int
}

// NewService creates a new ingestion service.
func NewService(deps Dependencies) *Service {
	s := &Service{
		lookups:         deps.Lookups,
		writer:          deps.Writer,
		runs:            deps.Runs,
		previews:        deps.Previews,
		permissions:     deps.Permissions,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		previewRowLimit: deps.PreviewRowLimit,
		now:             time.Now,
	}
	if s.previews == nil {
		s.previews = NewMemoryPreviewStore(15 * time.Minute)
	}
	if s.permissions == nil {
		s.permissions = auth.RoleChecker{}
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.previewRowLimit <= 0 {
		s.previewRowLimit = defaultPreviewRowLimit
	}
	return s
}

// Request describes an uploaded file.
type Request struct {
	TenantID uuid.UUID
	Kind     domain.ImportKind
	FileName string
	Data     io.Reader
}

// Result is the outcome of a successful import.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Validation is the full per-row outcome of an upload.
type Validation struct {
	Kind     domain.ImportKind
	Header   []string
	Warnings []string
	Rows     []ValidatedRow
}

// ValidCount returns the number of importable rows.
func (v Validation) ValidCount() int {
	n := 0
	for _, row := range v.Rows {
		if row.IsValid() {
			n++
		}
	}
	return n
}

// InvalidCount returns the number of rows with errors.
func (v Validation) InvalidCount() int {
	return len(v.Rows) - v.ValidCount()
}

// Records returns the records of the valid rows in file order.
func (v Validation) Records() []domain.Record {
	out := make([]domain.Record, 0, len(v.Rows))
	for _, row := range v.Rows {
		if valid, ok := row.Outcome.(Valid); ok {
			out = append(out, valid.Record)
		}
	}
	return out
}

// PreviewRow is one row of a preview response.
type PreviewRow struct {
	RowNumber int               `json:"rowNumber"`
	Values    map[string]string `json:"values"`
	Valid     bool              `json:"valid"`
	Errors    []string          `json:"errors,omitempty"`
}

// PreviewResult is returned to clients before they commit an upload.
type PreviewResult struct {
	Token       string            `json:"token"`
	Kind        domain.ImportKind `json:"kind"`
	FileName    string            `json:"fileName"`
	TotalRows   int               `json:"totalRows"`
	ValidRows   int               `json:"validRows"`
	InvalidRows int               `json:"invalidRows"`
	Warnings    []string          `json:"warnings,omitempty"`
	// NextCode is the code the first committed row would receive if nothing else commits first.
	NextCode string `json:"nextCode,omitempty"`
	// Rows holds every invalid row and the first valid rows up to the preview limit.
	Rows []PreviewRow `json:"rows"`
}

// ValidateRows maps and validates an upload against the tenant's lookups. It never writes.
func (s *Service) ValidateRows(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind, fileName string, payload []byte) (Validation, error) {
	if err := s.permissions.CanRead(ctx, tenantID); err != nil {
		return Validation{}, err
	}
	layout, err := LayoutFor(kind)
	if err != nil {
		return Validation{}, err
	}
	header, rows, err := readUpload(fileName, payload, layout.Headers)
	if err != nil {
		return Validation{}, err
	}

	res, err := s.loadResolver(ctx, tenantID, layout.Lookups)
	if err != nil {
		return Validation{}, err
	}

	validation := Validation{
		Kind:     kind,
		Header:   header,
		Warnings: layout.headerWarnings(header),
		Rows:     validateRows(layout, tenantID, res, rows),
	}
	s.metrics.observeRows(string(kind), validation.ValidCount(), validation.InvalidCount())
	return validation, nil
}

// Preview validates an upload and parks it so that it can be committed by token.
func (s *Service) Preview(ctx context.Context, req Request) (PreviewResult, error) {
	if err := s.permissions.CanEdit(ctx, req.TenantID); err != nil {
		return PreviewResult{}, err
	}
	payload, err := readPayload(req.Data)
	if err != nil {
		return PreviewResult{}, err
	}

	validation, err := s.ValidateRows(ctx, req.TenantID, req.Kind, req.FileName, payload)
	if err != nil {
		return PreviewResult{}, err
	}
	if len(validation.Rows) == 0 {
		return PreviewResult{}, ErrEmptyFile
	}

	next, err := s.writer.NextCode(ctx, req.TenantID, req.Kind)
	if err != nil {
		return PreviewResult{}, err
	}

	token, err := s.previews.Save(ctx, StoredPreview{
		TenantID:  req.TenantID,
		Kind:      req.Kind,
		FileName:  req.FileName,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return PreviewResult{}, err
	}

	layout, _ := LayoutFor(req.Kind)
	result := PreviewResult{
		Token:       token,
		Kind:        req.Kind,
		FileName:    req.FileName,
		TotalRows:   len(validation.Rows),
		ValidRows:   validation.ValidCount(),
		InvalidRows: validation.InvalidCount(),
		Warnings:    validation.Warnings,
		NextCode:    next,
		Rows:        []PreviewRow{},
	}
	shownValid := 0
	for _, row := range validation.Rows {
		if row.IsValid() {
			if shownValid >= s.previewRowLimit {
				continue
			}
			shownValid++
		}
		values := make(map[string]string, len(layout.Headers))
		for i, header := range layout.Headers {
			values[header] = row.Row.Fields[i]
		}
		result.Rows = append(result.Rows, PreviewRow{
			RowNumber: row.Row.Number,
			Values:    values,
			Valid:     row.IsValid(),
			Errors:    row.Errors(),
		})
	}
	return result, nil
}

// Import validates an upload and commits its valid rows in one transaction.
func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	if err := s.permissions.CanEdit(ctx, req.TenantID); err != nil {
		return Result{}, err
	}
	payload, err := readPayload(req.Data)
	if err != nil {
		return Result{}, err
	}
	return s.commit(ctx, req.TenantID, req.Kind, req.FileName, payload)
}

// CommitPreview imports a previously previewed upload. The file is validated
// again so that lookups changed since the preview are honoured.
func (s *Service) CommitPreview(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind, token string) (Result, error) {
	if err := s.permissions.CanEdit(ctx, tenantID); err != nil {
		return Result{}, err
	}
	preview, err := s.previews.Load(ctx, token)
	if err != nil {
		return Result{}, err
	}
	if preview.TenantID != tenantID || preview.Kind != kind {
		return Result{}, ErrPreviewNotFound
	}

	result, err := s.commit(ctx, tenantID, kind, preview.FileName, preview.Payload)
	if err != nil {
		return Result{}, err
	}
	if err := s.previews.Delete(ctx, token); err != nil {
		s.logger.WithError(err).WithField("token", token).Warn("failed to discard committed preview")
	}
	return result, nil
}

// NextCode reports the code the next committed record of kind would receive.
// Kinds without codes report "".
func (s *Service) NextCode(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind) (string, error) {
	if err := s.permissions.CanRead(ctx, tenantID); err != nil {
		return "", err
	}
	if _, err := LayoutFor(kind); err != nil {
		return "", err
	}
	return s.writer.NextCode(ctx, tenantID, kind)
}

// ListImportRuns pages through the tenant's import history, newest first.
func (s *Service) ListImportRuns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.ImportRun, error) {
	if err := s.permissions.CanRead(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.runs.List(ctx, tenantID, limit, offset)
}

// Template renders an import template whose example row uses the tenant's own names where possible.
func (s *Service) Template(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind, format string) (TemplateFile, error) {
	if err := s.permissions.CanRead(ctx, tenantID); err != nil {
		return TemplateFile{}, err
	}
	layout, err := LayoutFor(kind)
	if err != nil {
		return TemplateFile{}, err
	}
	res, err := s.loadResolver(ctx, tenantID, layout.Lookups)
	if err != nil {
		return TemplateFile{}, err
	}
	return renderTemplate(layout, exampleRow(layout, res, s.now()), format)
}

func (s *Service) commit(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind, fileName string, payload []byte) (Result, error) {
	log := s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"kind":      kind,
		"file_name": fileName,
	})

	validation, err := s.ValidateRows(ctx, tenantID, kind, fileName, payload)
	if err != nil {
		return Result{}, err
	}
	if len(validation.Rows) == 0 {
		return Result{}, ErrEmptyFile
	}

	result := Result{Skipped: validation.InvalidCount()}
	batch := validation.Records()
	if len(batch) == 0 {
		s.recordRun(ctx, tenantID, kind, fileName, result, ErrNoValidRows)
		return Result{}, ErrNoValidRows
	}

	start := s.now()
	_, err = s.writer.CreateBatch(ctx, tenantID, batch)
	s.metrics.observeCommit(string(kind), s.now().Sub(start).Seconds(), err)
	if err != nil {
		log.WithError(err).WithField("rows", len(batch)).Error("import commit failed")
		s.recordRun(ctx, tenantID, kind, fileName, Result{}, ErrCommitFailed)
		return Result{}, ErrCommitFailed
	}

	result.Imported = len(batch)
	log.WithFields(logrus.Fields{"imported": result.Imported, "skipped": result.Skipped}).Info("import committed")
	s.recordRun(ctx, tenantID, kind, fileName, result, nil)
	return result, nil
}

func (s *Service) recordRun(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind, fileName string, result Result, failure error) {
	if s.runs == nil {
		return
	}
	run := domain.ImportRun{
		TenantID:  tenantID,
		Kind:      kind,
		FileName:  fileName,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		CreatedAt: s.now().UTC(),
	}
	if actor, ok := auth.ActorFromContext(ctx); ok {
		run.ActorID = actor.ID
	}
	if failure != nil {
		run.ErrorMessage = failure.Error()
	}
	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.WithError(err).WithField("tenant_id", tenantID).Warn("failed to record import run")
	}
}

func (s *Service) loadResolver(ctx context.Context, tenantID uuid.UUID, kinds []domain.LookupKind) (*resolver, error) {
	loader := middleware.LookupLoaderFromContext(ctx)
	if loader == nil {
		loader = entityloader.NewLookupLoader(s.lookups)
	}
	lookups, err := loader.Load(ctx, tenantID, kinds)
	if err != nil {
		return nil, err
	}
	return newResolver(lookups), nil
}

func readPayload(data io.Reader) ([]byte, error) {
	if data == nil {
		return nil, ErrEmptyFile
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(bytes.TrimPrefix(payload, byteOrderMark))) == 0 {
		return nil, ErrEmptyFile
	}
	return payload, nil
}
