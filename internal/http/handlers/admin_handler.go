// Admin HTTP handlers.
//
// This file exposes the admin surface (all routes behind the X-ADMIN gate):
//   - GET   /admin/candidates/              (list/filter/sort/paginate)
//   - PATCH /admin/candidates/{id}/status/  (update status, append history)
//   - GET   /admin/candidates/{id}/resume/  (stream the promoted resume)
//
// Listing mirrors the write-side enums: filter values are validated against
// the department/status sets, the sort key against a whitelist handled in the
// repository layer.
package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/repo"
	"github.com/talenthub/go-hr-backend/internal/services"
	"github.com/talenthub/go-hr-backend/internal/utils"
)

//
// DTOs
//

// UpdateStatusRequest is the JSON payload for PATCH
// /admin/candidates/{id}/status/.
type UpdateStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Feedback string `json:"feedback"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCandidatesResponse wraps a page of candidates and pagination
// information.
type ListCandidatesResponse struct {
	Candidates []domain.Candidate `json:"candidates"`
	Pagination Pagination         `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// resumeContentType derives the download content type from the original
// filename's extension, falling back to a generic binary type.
func resumeContentType(filename string) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

//
// Handlers
//

// ListCandidates handles GET /admin/candidates/.
//
// Query parameters:
//   - department:     exact filter, one of the department enum values
//   - current_status: exact filter, one of the status enum values
//   - ordering:       sort key (created_at | full_name | years_of_experience),
//     "-" prefix for descending; default newest first
//   - page/page_size: pagination (defaults 1/20, page_size capped at 100)
//
// Unknown filter values are rejected per-field rather than silently matching
// nothing.
func (h *Handlers) ListCandidates(c *gin.Context) {
	fields := map[string]string{}

	dept := strings.TrimSpace(c.Query("department"))
	if dept != "" && !domain.ValidDepartment(dept) {
		fields["department"] = "Value is not a valid choice. Choose one of: " + strings.Join(domain.Departments, ", ") + "."
	}
	status := strings.TrimSpace(c.Query("current_status"))
	if status != "" && !domain.ValidStatus(status) {
		fields["current_status"] = "Value is not a valid choice. Choose one of: " + strings.Join(domain.Statuses, ", ") + "."
	}
	if len(fields) > 0 {
		failFields(c, fields)
		return
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.candSvc.ListPage(c.Request.Context(), repo.CandidateFilter{
		Department:    dept,
		CurrentStatus: status,
	}, c.Query("ordering"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list candidates")
		return
	}

	if items == nil {
		items = []domain.Candidate{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCandidatesResponse{
		Candidates: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// UpdateCandidateStatus handles PATCH /admin/candidates/{id}/status/.
//
// Any status-to-status transition is allowed, including re-setting the
// current value; every call appends a history entry. Returns the refreshed
// status view.
func (h *Handlers) UpdateCandidateStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "candidate id must be a UUID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failFields(c, map[string]string{"status": "This field is required."})
		return
	}
	if !domain.ValidStatus(req.Status) {
		failFields(c, map[string]string{
			"status": "Value is not a valid choice. Choose one of: " + strings.Join(domain.Statuses, ", ") + ".",
		})
		return
	}

	cand, hist, err := h.candSvc.UpdateStatus(c.Request.Context(), id, req.Status, strings.TrimSpace(req.Feedback))
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update status")
		return
	}

	ok(c, http.StatusOK, StatusResponse{
		CandidateID:   cand.ID,
		FullName:      cand.FullName,
		CurrentStatus: cand.CurrentStatus,
		History:       historyEntries(hist),
	})
}

// DownloadResume handles GET /admin/candidates/{id}/resume/.
//
// Streams the promoted resume bytes with a Content-Disposition carrying the
// original filename. A candidate without a promoted resume (or whose blob is
// gone) yields 404.
func (h *Handlers) DownloadResume(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "candidate id must be a UUID")
		return
	}

	cand, rc, err := h.candSvc.Resume(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCandidateNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
		case errors.Is(err, services.ErrNoResume):
			fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrNoResume.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open resume")
		}
		return
	}
	defer rc.Close()

	disposition := `attachment; filename=` + strconv.Quote(cand.ResumeFilename)
	c.DataFromReader(http.StatusOK, -1, resumeContentType(cand.ResumeFilename), rc, map[string]string{
		"Content-Disposition": disposition,
	})
}
