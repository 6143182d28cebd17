// Package services – UploadService
//
// This file implements the first phase of the two-phase upload protocol:
// validating resume content, staging the bytes on the configured blob
// backend, and recording a StagedUpload row carrying the file token, the
// storage locator, and a one-hour expiry. The second phase (promotion) is
// owned by RegistrationService.
package services

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/filecheck"
	"github.com/talenthub/go-hr-backend/internal/repo"
	"github.com/talenthub/go-hr-backend/internal/storage"
)

// UploadTTL is how long a staged upload stays redeemable. Expiry is
// evaluated lazily at point of use; there is no background reaper.
const UploadTTL = time.Hour

// UploadService stages resume files ahead of registration.
type UploadService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the blob backend selected at startup.
	Store storage.BlobStore

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

func (s *UploadService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Stage validates src (content sniffing + size ceiling), writes it to the
// temporary blob namespace under a fresh file token, and records the staged
// upload. It returns the persisted row and the temporary retrieval URL.
//
// Rejections are *filecheck.ValidationError; storage and DB failures are
// returned raw for the handler to report as internal errors.
func (s *UploadService) Stage(ctx context.Context, src io.ReadSeeker, originalName string, size int64) (*domain.StagedUpload, string, error) {
	contentType, err := filecheck.Validate(src, size)
	if err != nil {
		var ve *filecheck.ValidationError
		if errors.As(err, &ve) {
			resumeUploads.WithLabelValues("rejected").Inc()
		} else {
			resumeUploads.WithLabelValues("failed").Inc()
		}
		return nil, "", err
	}

	fileID := uuid.NewString()
	storedName := "resume_" + fileID + path.Ext(originalName)

	staged, err := s.Store.Stage(ctx, src, fileID, storedName, contentType)
	if err != nil {
		resumeUploads.WithLabelValues("failed").Inc()
		return nil, "", err
	}

	now := s.now()
	up := &domain.StagedUpload{
		FileID:           fileID,
		OriginalFilename: originalName,
		ContentType:      contentType,
		FileSize:         size,
		StorageType:      staged.Descriptor.Kind,
		StorageKey:       staged.Descriptor.Key,
		StoredFilename:   staged.Descriptor.Filename,
		CreatedAt:        now,
		ExpiresAt:        now.Add(UploadTTL),
	}
	if err := repo.CreateStagedUpload(ctx, s.DB, up); err != nil {
		// The row is the source of truth; without it the staged blob is
		// unreachable, so clean it up.
		s.Store.Discard(ctx, staged.Descriptor)
		resumeUploads.WithLabelValues("failed").Inc()
		return nil, "", err
	}

	resumeUploads.WithLabelValues("accepted").Inc()
	return up, staged.URL, nil
}

// Get returns a staged upload by its file token, or ErrUploadNotFound.
func (s *UploadService) Get(ctx context.Context, fileID string) (*domain.StagedUpload, error) {
	up, err := repo.GetStagedUpload(ctx, s.DB, fileID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return up, nil
}

// Expired reports the lazy expiry state of an upload against the service
// clock, for the inspection endpoint.
func (s *UploadService) Expired(up *domain.StagedUpload) bool {
	return up.Expired(s.now())
}
