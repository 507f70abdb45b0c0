package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/liftdesk/internal/auth"
)

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.HeaderMiddleware)
	r.Mount("/api/tenants/{tenantID}/imports", NewHTTPHandler(f.service, 1<<20, nil).Routes())
	return r
}

func uploadRequest(t *testing.T, url, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (f *fixture) withActor(req *http.Request, role auth.Role) *http.Request {
	req.Header.Set(auth.HeaderActorID, "actor-1")
	req.Header.Set(auth.HeaderActorRole, string(role))
	req.Header.Set(auth.HeaderTenantID, f.tenant.ID.String())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandlerImport(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	url := "/api/tenants/" + f.tenant.ID.String() + "/imports/jobs"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, f.withActor(uploadRequest(t, url, "jobs.csv", tenRowJobs()), auth.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"imported": float64(8), "skipped": float64(2)}, decode(t, rec))
}

func TestHandlerErrors(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	base := "/api/tenants/" + f.tenant.ID.String() + "/imports"

	tests := []struct {
		name   string
		req    *http.Request
		status int
		error  string
	}{
		{
			name:   "viewer denied",
			req:    f.withActor(uploadRequest(t, base+"/jobs", "jobs.csv", tenRowJobs()), auth.RoleViewer),
			status: http.StatusForbidden,
			error:  "permission denied",
		},
		{
			name:   "empty file",
			req:    f.withActor(uploadRequest(t, base+"/jobs", "jobs.csv", ""), auth.RoleOwner),
			status: http.StatusBadRequest,
			error:  ErrEmptyFile.Error(),
		},
		{
			name:   "no valid rows",
			req:    f.withActor(uploadRequest(t, base+"/jobs", "jobs.csv", jobsHeader+"\n,,,,,,,,,,\n"), auth.RoleOwner),
			status: http.StatusUnprocessableEntity,
			error:  ErrNoValidRows.Error(),
		},
		{
			name:   "unknown kind",
			req:    f.withActor(uploadRequest(t, base+"/invoices", "x.csv", "a\nb\n"), auth.RoleOwner),
			status: http.StatusNotFound,
		},
		{
			name:   "bad tenant",
			req:    uploadRequest(t, "/api/tenants/nope/imports/jobs", "jobs.csv", tenRowJobs()),
			status: http.StatusBadRequest,
		},
		{
			name:   "nil tenant",
			req:    f.withActor(uploadRequest(t, "/api/tenants/"+uuid.Nil.String()+"/imports/jobs", "jobs.csv", tenRowJobs()), auth.RoleOwner),
			status: http.StatusBadRequest,
			error:  ErrTenantRequired.Error(),
		},
		{
			name:   "anonymous template",
			req:    httptest.NewRequest(http.MethodGet, base+"/jobs/template", nil),
			status: http.StatusForbidden,
			error:  "permission denied",
		},
		{
			name:   "anonymous runs",
			req:    httptest.NewRequest(http.MethodGet, base+"/", nil),
			status: http.StatusForbidden,
			error:  "permission denied",
		},
		{
			name:   "customer runs",
			req:    f.withActor(httptest.NewRequest(http.MethodGet, base+"/", nil), auth.RoleCustomer),
			status: http.StatusForbidden,
		},
		{
			name:   "missing preview",
			req:    f.withActor(httptest.NewRequest(http.MethodPost, base+"/jobs/previews/unknown/commit", nil), auth.RoleOwner),
			status: http.StatusNotFound,
			error:  ErrPreviewNotFound.Error(),
		},
		{
			name:   "too large",
			req:    f.withActor(uploadRequest(t, base+"/jobs", "jobs.csv", strings.Repeat("x", 2<<20)), auth.RoleOwner),
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Contains(t, body, "error")
			if tt.error != "" {
				assert.Equal(t, tt.error, body["error"])
			}
		})
	}
}

func TestHandlerPreviewAndCommit(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	base := "/api/tenants/" + f.tenant.ID.String() + "/imports"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, f.withActor(uploadRequest(t, base+"/jobs/preview", "jobs.csv", tenRowJobs()), auth.RoleDispatcher))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview PreviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, 8, preview.ValidRows)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, f.withActor(httptest.NewRequest(http.MethodPost, base+"/jobs/previews/"+preview.Token+"/commit", nil), auth.RoleDispatcher))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"imported": float64(8), "skipped": float64(2)}, decode(t, rec))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, f.withActor(httptest.NewRequest(http.MethodGet, base+"/", nil), auth.RoleViewer))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)
}

func TestHandlerTemplate(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tenants/"+f.tenant.ID.String()+"/imports/jobs/template?format=csv", nil)
	router.ServeHTTP(rec, f.withActor(req, auth.RoleViewer))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="jobs-import-template.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), jobsHeader))
}
