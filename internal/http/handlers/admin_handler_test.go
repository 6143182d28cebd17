package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/services"
)

const adminCandID = "5f0f7dcb-0000-0000-0000-0000000000aa"

func TestListCandidates_InvalidFilterValues(t *testing.T) {
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, &stubCandService{})

	cases := []struct {
		name  string
		query string
		field string
	}{
		{"unknown department", "?department=Legal", "department"},
		{"unknown status", "?current_status=hired", "current_status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/candidates/"+tc.query, nil))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			resp := decodeErrorBody(t, w)
			if resp.Fields[tc.field] == "" {
				t.Fatalf("expected %s field error, got %+v", tc.field, resp)
			}
		})
	}
}

func TestListCandidates_PaginationMetadata(t *testing.T) {
	cand := &stubCandService{
		items: []domain.Candidate{{ID: adminCandID, FullName: "Jane Doe"}},
		total: 41,
	}
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/candidates/?page=2&page_size=20", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp ListCandidatesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 41 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
}

func TestListCandidates_ClampsPagination(t *testing.T) {
	cand := &stubCandService{total: 0}
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/candidates/?page=-3&page_size=9999", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListCandidatesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 100 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
	if resp.Candidates == nil {
		t.Fatal("candidates must marshal as an empty array, not null")
	}
}

func TestUpdateCandidateStatus_Validation(t *testing.T) {
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, &stubCandService{})

	t.Run("missing status", func(t *testing.T) {
		w := postPatch(t, r, "/admin/candidates/"+adminCandID+"/status/", map[string]any{"feedback": "x"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		if resp := decodeErrorBody(t, w); resp.Fields["status"] != "This field is required." {
			t.Fatalf("fields = %+v", resp.Fields)
		}
	})

	t.Run("unknown status value", func(t *testing.T) {
		w := postPatch(t, r, "/admin/candidates/"+adminCandID+"/status/", map[string]any{"status": "hired"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		if resp := decodeErrorBody(t, w); resp.Fields["status"] == "" {
			t.Fatalf("fields = %+v", resp.Fields)
		}
	})

	t.Run("invalid uuid", func(t *testing.T) {
		w := postPatch(t, r, "/admin/candidates/nope/status/", map[string]any{"status": domain.StatusAccepted})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestUpdateCandidateStatus_Success(t *testing.T) {
	cand := &stubCandService{
		cand: &domain.Candidate{ID: adminCandID, FullName: "Jane Doe", CurrentStatus: domain.StatusSubmitted},
		hist: []domain.StatusHistory{
			{Status: domain.StatusAccepted, Feedback: "Great fit"},
			{Status: domain.StatusSubmitted},
		},
	}
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

	w := postPatch(t, r, "/admin/candidates/"+adminCandID+"/status/", map[string]any{
		"status":   domain.StatusAccepted,
		"feedback": "Great fit",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CurrentStatus != domain.StatusAccepted || len(resp.History) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdateCandidateStatus_NotFound(t *testing.T) {
	cand := &stubCandService{err: services.ErrCandidateNotFound}
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

	w := postPatch(t, r, "/admin/candidates/"+adminCandID+"/status/", map[string]any{"status": domain.StatusRejected})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDownloadResume_Success(t *testing.T) {
	cand := &stubCandService{
		cand: &domain.Candidate{
			ID:             adminCandID,
			ResumeFilename: "jane cv.pdf",
		},
		resumeBody: "%PDF-1.4 payload",
	}
	r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/candidates/"+adminCandID+"/resume/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="jane cv.pdf"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	body, _ := io.ReadAll(w.Body)
	if string(body) != "%PDF-1.4 payload" {
		t.Fatalf("body = %q", body)
	}
}

func TestDownloadResume_NotFoundVariants(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{"missing candidate", services.ErrCandidateNotFound},
		{"no resume on file", services.ErrNoResume},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cand := &stubCandService{resumeErr: tc.err}
			r := newTestRouter(&stubUploadService{}, &stubRegService{}, cand)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/candidates/"+adminCandID+"/resume/", nil))

			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
}

func TestResumeContentType(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"cv.pdf", "application/pdf"},
		{"cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"cv.bin", "application/octet-stream"},
	}
	for _, tc := range cases {
		got := resumeContentType(tc.filename)
		// mime.TypeByExtension may append a charset or similar parameter.
		if got != tc.want && !bytes.HasPrefix([]byte(got), []byte(tc.want)) {
			t.Errorf("resumeContentType(%q) = %q, want prefix %q", tc.filename, got, tc.want)
		}
	}
}

func postPatch(t *testing.T, r http.Handler, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPatch, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
