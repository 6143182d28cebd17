// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// StagedUpload model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an upload is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - MarkUploadUsed returns ErrNotFound when the conditional update matches
//     no row, i.e. the upload does not exist or has already been consumed.
//     The distinction belongs to the service layer, which has already loaded
//     the row.
//   - On other DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateStagedUpload inserts a new staged upload row. The row ID is a fresh
// UUID; FileID, the storage locator, and ExpiresAt are provided by the caller
// (the upload service owns token generation and expiry policy).
func CreateStagedUpload(ctx context.Context, db *gorm.DB, u *domain.StagedUpload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(u).Error
}

// GetStagedUpload fetches a staged upload by its public file token.
// Returns ErrNotFound if no such token exists.
func GetStagedUpload(ctx context.Context, db *gorm.DB, fileID string) (*domain.StagedUpload, error) {
	var u domain.StagedUpload
	err := db.WithContext(ctx).
		Where("file_id = ?", fileID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// MarkUploadUsed flips the single-use flag for fileID from unused to used in
// one conditional UPDATE. The WHERE clause on is_used makes the check-and-set
// atomic: of two racing registrations only one statement can match the row.
// Returns ErrNotFound when zero rows were affected (missing or already used).
func MarkUploadUsed(ctx context.Context, db *gorm.DB, fileID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.StagedUpload{}).
		Where("file_id = ? AND is_used = ?", fileID, false).
		Updates(map[string]any{"is_used": true, "used_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
