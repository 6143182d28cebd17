// Resume upload HTTP handlers.
//
// This file exposes the first phase of the two-phase upload protocol:
//   - POST /upload/            (stage a resume, returns the file token)
//   - GET  /upload/{file_id}/  (inspect a staged upload)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/filecheck"
	"github.com/talenthub/go-hr-backend/internal/repo"
	"github.com/talenthub/go-hr-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// UploadService defines the staged-upload operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UploadService interface {
	// Stage validates and stores src, returning the staged record and its
	// temporary retrieval URL.
	Stage(ctx context.Context, src io.ReadSeeker, originalName string, size int64) (*domain.StagedUpload, string, error)
	// Get resolves a file token to its staged upload.
	Get(ctx context.Context, fileID string) (*domain.StagedUpload, error)
	// Expired reports the upload's lazy expiry state.
	Expired(up *domain.StagedUpload) bool
}

// RegistrationService defines candidate creation consumed by HTTP handlers.
type RegistrationService interface {
	// Register creates a candidate, consuming the staged upload it names.
	Register(ctx context.Context, in services.RegistrationInput) (*domain.Candidate, error)
}

// CandidateService defines candidate queries and admin mutations consumed by
// HTTP handlers.
type CandidateService interface {
	// Status returns a candidate and their history, newest first.
	Status(ctx context.Context, id string) (*domain.Candidate, []domain.StatusHistory, error)
	// UpdateStatus sets the current status and appends a history entry.
	UpdateStatus(ctx context.Context, id, status, feedback string) (*domain.Candidate, []domain.StatusHistory, error)
	// ListPage returns a page of candidates matching the filter plus the total.
	ListPage(ctx context.Context, f repo.CandidateFilter, ordering string, page, pageSize int) ([]domain.Candidate, int64, error)
	// Resume opens the candidate's promoted resume for streaming.
	Resume(ctx context.Context, id string) (*domain.Candidate, io.ReadCloser, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for uploads, registration, and the admin
// surface. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	uploadSvc UploadService
	regSvc    RegistrationService
	candSvc   CandidateService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(uploadSvc UploadService, regSvc RegistrationService, candSvc CandidateService) *Handlers {
	return &Handlers{uploadSvc: uploadSvc, regSvc: regSvc, candSvc: candSvc}
}

//
// DTOs
//

// StageUploadResponse is returned by POST /upload/ on success. The file_id is
// the token to present at registration; the URL points at the temporary blob
// and stops working once the upload is promoted or expires.
type StageUploadResponse struct {
	Message          string    `json:"message"`
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	URL              string    `json:"url"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// UploadInfoResponse is returned by GET /upload/{file_id}/. Expiry is
// evaluated lazily at read time; is_expired and is_used are independent axes.
type UploadInfoResponse struct {
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	IsExpired        bool      `json:"is_expired"`
	IsUsed           bool      `json:"is_used"`
}

//
// Handlers
//

// StageUpload handles POST /upload/.
//
// Expects a multipart form with a single "file" part. The file is sniffed for
// content type (PDF/DOCX only) and bounded at 5 MiB; rejections are reported
// as a field error on "file". On success the staged upload is redeemable for
// one hour.
func (h *Handlers) StageUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		failFields(c, map[string]string{"file": "No file was submitted."})
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not read uploaded file")
		return
	}
	defer f.Close()

	up, url, err := h.uploadSvc.Stage(c.Request.Context(), f, fh.Filename, fh.Size)
	if err != nil {
		var ve *filecheck.ValidationError
		if errors.As(err, &ve) {
			failFields(c, map[string]string{"file": ve.Reason})
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store uploaded file")
		return
	}

	ok(c, http.StatusCreated, StageUploadResponse{
		Message:          "File uploaded successfully",
		FileID:           up.FileID,
		OriginalFilename: up.OriginalFilename,
		FileSize:         up.FileSize,
		ContentType:      up.ContentType,
		URL:              url,
		ExpiresAt:        up.ExpiresAt,
	})
}

// GetUpload handles GET /upload/{file_id}/.
//
// Returns the staged upload's metadata with its lazily evaluated expiry and
// used state. Unknown tokens yield 404.
func (h *Handlers) GetUpload(c *gin.Context) {
	fileID := c.Param("file_id")

	up, err := h.uploadSvc.Get(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, services.ErrUploadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "upload not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load upload")
		return
	}

	ok(c, http.StatusOK, UploadInfoResponse{
		FileID:           up.FileID,
		OriginalFilename: up.OriginalFilename,
		FileSize:         up.FileSize,
		ContentType:      up.ContentType,
		CreatedAt:        up.CreatedAt,
		ExpiresAt:        up.ExpiresAt,
		IsExpired:        h.uploadSvc.Expired(up),
		IsUsed:           up.IsUsed,
	})
}
