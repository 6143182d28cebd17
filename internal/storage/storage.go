// Package storage moves resume bytes between a temporary staging namespace
// and a permanent per-candidate namespace, for two backends: the local
// filesystem and S3-compatible object storage.
//
// The two backends share one capability interface so the registration flow is
// backend-agnostic. The backend is selected once at process start from
// configuration and injected; no call site branches on the storage kind.
//
// Key layout (identical on both backends):
//
//	temp_resumes/{file_id}/{stored_filename}   staged, expires with the token
//	resumes/{candidate_id}/{stored_filename}   permanent, bound to the owner
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/talenthub/go-hr-backend/internal/config"
)

// ErrBlobNotFound is returned by Open when the permanent object is missing.
var ErrBlobNotFound = errors.New("blob not found")

// Descriptor locates a staged or promoted blob on its backend. It is
// persisted alongside the StagedUpload row so a later request (registration,
// cleanup) can act on the bytes without re-deriving paths.
type Descriptor struct {
	Kind     string // domain.StorageLocal or domain.StorageS3
	Key      string // relative path (local) or object key (s3)
	Filename string // stored object filename, e.g. "resume_<file_id>.pdf"
}

// Staged is the outcome of staging a blob: its locator plus a retrievable
// URL. For S3 the URL is a presigned GET valid for one hour; for local disk
// it is a public-base-rooted media URL.
type Staged struct {
	Descriptor Descriptor
	URL        string
}

// Promoted is the outcome of promoting a blob: the permanent URL plus the
// locator of the permanent object (needed to compensate a lost mark-used
// race by deleting the copy).
type Promoted struct {
	Descriptor Descriptor
	URL        string
}

// BlobStore is the capability interface shared by both backends.
//
// Promote is atomic from the caller's perspective: it either returns the
// permanent location with the temporary copy gone, or an error with the
// temporary copy untouched. Discard is cleanup-path only; implementations
// log failures and never return them.
type BlobStore interface {
	// Stage writes r to the temporary namespace under fileID and returns the
	// locator and a retrievable URL.
	Stage(ctx context.Context, r io.Reader, fileID, filename, contentType string) (Staged, error)

	// Promote moves a staged blob to the permanent namespace keyed by the
	// owning candidate's ID and returns the permanent URL.
	Promote(ctx context.Context, d Descriptor, ownerID string) (Promoted, error)

	// Discard best-effort deletes a staged or promoted blob.
	Discard(ctx context.Context, d Descriptor)

	// Open streams a promoted blob for download. Returns ErrBlobNotFound if
	// the object does not exist.
	Open(ctx context.Context, ownerID, filename string) (io.ReadCloser, error)
}

// New selects and constructs the configured backend.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	if cfg.UseS3 {
		return NewS3Store(ctx, cfg)
	}
	return NewLocalStore(cfg.MediaRoot, cfg.PublicBaseURL)
}

func tempKey(fileID, filename string) string {
	return "temp_resumes/" + fileID + "/" + filename
}

func permanentKey(ownerID, filename string) string {
	return "resumes/" + ownerID + "/" + filename
}
