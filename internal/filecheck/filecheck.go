// Package filecheck validates uploaded resume content before it is staged.
//
// Validation inspects the actual bytes (magic-number sniffing via the
// mimetype library), never the filename extension or the client-declared
// content type, and enforces an inclusive size ceiling. The read position of
// the source is restored after sniffing so downstream consumers see the full
// content from the start.
package filecheck

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxResumeBytes is the inclusive upload size ceiling (5 MiB). A file of
// exactly this size is accepted; one byte more is rejected.
const MaxResumeBytes int64 = 5 << 20

// MIME types accepted for resumes.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedTypes = []string{MIMEPDF, MIMEDOCX}

// ValidationError describes why an upload was rejected. The message is safe
// to return to the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validate checks size and sniffed content type of an uploaded file. On
// success it returns the detected MIME type; on rejection a *ValidationError
// with a descriptive reason. The reader is rewound to the start in either
// case so the caller can stream the full content afterwards.
func Validate(r io.ReadSeeker, size int64) (string, error) {
	if size > MaxResumeBytes {
		return "", &ValidationError{
			Reason: fmt.Sprintf("File too large. Maximum size: %dMB", MaxResumeBytes>>20),
		}
	}

	mt, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", serr
	}
	if err != nil {
		return "", err
	}

	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", &ValidationError{
		Reason: fmt.Sprintf("File type %s not allowed. Allowed types: %s",
			mt.String(), strings.Join(allowedTypes, ", ")),
	}
}
