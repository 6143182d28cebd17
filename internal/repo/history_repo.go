// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// StatusHistory model.
//
// History is an append-only audit log: rows are inserted (once per status
// transition, including the initial "submitted" entry) and read back newest
// first; they are never updated, and deletion happens only via the candidate
// cascade.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
)

// AppendStatusHistory inserts one history row for a candidate. ChangedAt
// defaults to the current UTC instant when unset; callers inside a larger
// operation may pin it for deterministic ordering.
func AppendStatusHistory(ctx context.Context, db *gorm.DB, candidateID, status, feedback, adminInfo string) (*domain.StatusHistory, error) {
	h := &domain.StatusHistory{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Status:      status,
		Feedback:    feedback,
		AdminInfo:   adminInfo,
		ChangedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// ListStatusHistory returns all history rows for a candidate, newest first.
// Ties on ChangedAt are broken by ID so the order is deterministic.
func ListStatusHistory(ctx context.Context, db *gorm.DB, candidateID string) ([]domain.StatusHistory, error) {
	var out []domain.StatusHistory
	err := db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("changed_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
