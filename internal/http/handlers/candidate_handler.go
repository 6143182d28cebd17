// Public candidate HTTP handlers.
//
// This file exposes the candidate-facing endpoints:
//   - POST /candidates/              (register using a staged file token)
//   - GET  /candidates/{id}/status/  (current status + full history)
//
// Registration validation happens in two layers: structural checks here
// (required fields, formats, enum membership) reported per-field in one pass,
// then the business rules (token state, uniqueness, age bound) in the
// registration service, reported in the same per-field shape.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/services"
)

// dateLayout is the wire format for date_of_birth.
const dateLayout = "2006-01-02"

//
// DTOs
//

// RegisterCandidateRequest is the JSON payload for registering a candidate.
// The file_id must come from a prior POST /upload/ and still be redeemable.
type RegisterCandidateRequest struct {
	FullName          string `json:"full_name" binding:"required,min=1,max=255"`
	Email             string `json:"email" binding:"required,email"`
	Phone             string `json:"phone" binding:"required,min=5,max=32"`
	DateOfBirth       string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	YearsOfExperience *int   `json:"years_of_experience" binding:"required,gte=0"`
	Department        string `json:"department" binding:"required,oneof=IT HR Finance"`
	FileID            string `json:"file_id" binding:"required"`
}

// RegisterCandidateResponse is returned by POST /candidates/ on success.
type RegisterCandidateResponse struct {
	Message       string `json:"message"`
	CandidateID   string `json:"candidate_id"`
	CurrentStatus string `json:"current_status"`
}

// HistoryEntry is one status-history record in API responses, newest first.
type HistoryEntry struct {
	Status    string    `json:"status"`
	Feedback  string    `json:"feedback,omitempty"`
	AdminInfo string    `json:"admin_info,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// StatusResponse is returned by the status endpoints: the candidate's current
// state plus the full append-only history.
type StatusResponse struct {
	CandidateID   string         `json:"candidate_id"`
	FullName      string         `json:"full_name"`
	CurrentStatus string         `json:"current_status"`
	History       []HistoryEntry `json:"history"`
}

// historyEntries converts persisted history rows to their API shape.
func historyEntries(hist []domain.StatusHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(hist))
	for _, h := range hist {
		out = append(out, HistoryEntry{
			Status:    h.Status,
			Feedback:  h.Feedback,
			AdminInfo: h.AdminInfo,
			ChangedAt: h.ChangedAt,
		})
	}
	return out
}

//
// Binding-error translation
//

// registerFieldJSON maps struct field names to their JSON keys for per-field
// error reporting.
var registerFieldJSON = map[string]string{
	"FullName":          "full_name",
	"Email":             "email",
	"Phone":             "phone",
	"DateOfBirth":       "date_of_birth",
	"YearsOfExperience": "years_of_experience",
	"Department":        "department",
	"FileID":            "file_id",
}

// bindingFieldErrors translates validator failures into per-field messages.
// Returns nil when err carries no field information (e.g. malformed JSON).
func bindingFieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name, ok := registerFieldJSON[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fields[name] = bindingMessage(fe)
	}
	return fields
}

// bindingMessage renders a human-readable message for a single failed rule.
func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Date has wrong format. Use YYYY-MM-DD."
	case "gte":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "oneof":
		return "Value is not a valid choice. Choose one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	default:
		return "This value is invalid."
	}
}

//
// Handlers
//

// RegisterCandidate handles POST /candidates/.
//
// On success the candidate exists with a promoted resume and an initial
// "submitted" history entry, and the file token is consumed. All rejections
// (structural, business-rule, and conflicts) are 400s carrying per-field
// messages; a promotion failure after validation is a 500 and leaves the
// token redeemable.
func (h *Handlers) RegisterCandidate(c *gin.Context) {
	var req RegisterCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := bindingFieldErrors(err); fields != nil {
			failFields(c, fields)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		failFields(c, map[string]string{"date_of_birth": "Date has wrong format. Use YYYY-MM-DD."})
		return
	}

	cand, err := h.regSvc.Register(c.Request.Context(), services.RegistrationInput{
		FullName:          strings.TrimSpace(req.FullName),
		Email:             req.Email,
		Phone:             strings.TrimSpace(req.Phone),
		DateOfBirth:       dob,
		YearsOfExperience: *req.YearsOfExperience,
		Department:        req.Department,
		FileID:            req.FileID,
	})
	if err != nil {
		if fields, isFieldErr := services.AsFieldErrors(err); isFieldErr {
			failFields(c, fields)
			return
		}
		if errors.Is(err, services.ErrFileProcessing) {
			fail(c, http.StatusInternalServerError, ErrCodeFileProcessing, services.ErrFileProcessing.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not register candidate")
		return
	}

	ok(c, http.StatusCreated, RegisterCandidateResponse{
		Message:       "Registration successful",
		CandidateID:   cand.ID,
		CurrentStatus: cand.CurrentStatus,
	})
}

// CandidateStatus handles GET /candidates/{id}/status/.
//
// Returns the candidate's current status plus all history entries, newest
// first. The initial entry is created with the candidate, so the history is
// never empty for an existing candidate.
func (h *Handlers) CandidateStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "candidate id must be a UUID")
		return
	}

	cand, hist, err := h.candSvc.Status(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load candidate")
		return
	}

	ok(c, http.StatusOK, StatusResponse{
		CandidateID:   cand.ID,
		FullName:      cand.FullName,
		CurrentStatus: cand.CurrentStatus,
		History:       historyEntries(hist),
	})
}
