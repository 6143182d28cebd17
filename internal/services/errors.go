// Package services defines the business logic for resume uploads, candidate
// registration, and status tracking. This file centralizes common
// service-level error values and the field-error type used for
// validation-shaped rejections, so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUploadNotFound indicates that the requested staged upload does not
	// exist.
	ErrUploadNotFound = errors.New("upload not found")

	// ErrCandidateNotFound indicates that the requested candidate does not
	// exist.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrNoResume is returned when a resume download is requested for a
	// candidate without a promoted resume on file.
	ErrNoResume = errors.New("no resume file found for this candidate")

	// ErrFileProcessing is returned when blob promotion fails during
	// registration. The underlying storage error is logged server-side and
	// never exposed; the registration has been fully rolled back.
	ErrFileProcessing = errors.New("File processing failed. Please try again.")
)

// Client-facing validation messages, shaped after the upstream API contract.
const (
	msgInvalidFileID   = "Invalid file ID. Please upload the file first."
	msgUploadExpired   = "File upload has expired. Please upload the file again."
	msgUploadConsumed  = "This file has already been used for another registration."
	msgDuplicateEmail  = "A candidate with this email already exists."
	msgDuplicatePhone  = "A candidate with this phone number already exists."
	msgDuplicateEither = "A candidate with this email or phone already exists."
)

// FieldErrors maps field names to rejection reasons. It is returned by
// validation-shaped failures (bad input, conflicts, expiry) so handlers can
// render a per-field error body. Nothing is persisted when it is returned.
type FieldErrors map[string]string

// Error joins the field messages deterministically (sorted by field name).
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors, reporting whether it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// duplicateFieldErrors translates a unique violation raised at insert time
// (a pre-check race) back into the same field error the pre-check would have
// produced. The offending column name appears in the driver message.
func duplicateFieldErrors(err error) FieldErrors {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return FieldErrors{"email": msgDuplicateEmail}
	case strings.Contains(msg, "phone"):
		return FieldErrors{"phone": msgDuplicatePhone}
	default:
		return FieldErrors{"non_field_errors": msgDuplicateEither}
	}
}
