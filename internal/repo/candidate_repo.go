// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Candidate
// model, including the filtered/ordered/paginated listing used by the admin
// surface.
//
// Functions:
//
//   - CreateCandidate(ctx, db, c) -> error
//     Inserts a new Candidate row with UUID primary key and UTC timestamps.
//
//   - GetCandidate(ctx, db, id) -> *domain.Candidate, error
//     Fetches a single candidate by ID, or ErrNotFound if missing.
//
//   - DeleteCandidate(ctx, db, id) -> error
//     Hard-deletes a candidate row (history cascades). Used by the
//     registration rollback; must not leave a tombstone holding the unique
//     email/phone.
//
//   - EmailExists / PhoneExists
//     Uniqueness probes used for precise field errors. The unique indexes
//     remain the authority under concurrency.
//
//   - UpdateCandidateResume / UpdateCandidateStatus
//     Narrow column updates for the two mutation paths.
//
//   - CountCandidates / ListCandidatesPage
//     Admin listing with exact-match filters and a whitelisted ORDER BY.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
)

// CandidateFilter restricts admin listings by exact match. Empty fields
// impose no constraint.
type CandidateFilter struct {
	Department    string
	CurrentStatus string
}

// candidateOrderColumns whitelists the fields the admin listing may sort by,
// mapping the API name to the column expression.
var candidateOrderColumns = map[string]string{
	"created_at":          "created_at",
	"full_name":           "full_name",
	"years_of_experience": "years_of_experience",
}

// CandidateOrderClause translates an ordering parameter ("full_name",
// "-created_at", …) into a safe ORDER BY clause. Unknown fields fall back to
// the default newest-first ordering.
func CandidateOrderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	col, ok := candidateOrderColumns[field]
	if !ok {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// CreateCandidate inserts a new candidate row. ID and CreatedAt are filled in
// when unset. On failure (including unique violations on email/phone), the
// raw DB error is returned for the service layer to translate.
func CreateCandidate(ctx context.Context, db *gorm.DB, c *domain.Candidate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.CurrentStatus == "" {
		c.CurrentStatus = domain.StatusSubmitted
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetCandidate fetches a single candidate by ID. If the record does not
// exist, it returns ErrNotFound.
func GetCandidate(ctx context.Context, db *gorm.DB, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCandidate hard-deletes a candidate row by ID. History rows cascade at
// the schema level. Deleting a missing row is not an error.
func DeleteCandidate(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Candidate{}).Error
}

// EmailExists reports whether any candidate holds the given email,
// case-insensitively. Emails are stored lowercased, but the LOWER() on the
// column keeps the probe correct even for rows predating that convention.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

// PhoneExists reports whether any candidate holds the given phone number,
// compared exactly as provided.
func PhoneExists(ctx context.Context, db *gorm.DB, phone string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("phone = ?", phone).
		Count(&n).Error
	return n > 0, err
}

// UpdateCandidateResume sets the resume columns after a successful promotion.
// Returns ErrNotFound when the candidate row is gone.
func UpdateCandidateResume(ctx context.Context, db *gorm.DB, id, fileID, filename, url string) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"resume_file_id":  fileID,
			"resume_filename": filename,
			"resume_url":      url,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCandidateStatus sets current_status. Returns ErrNotFound when the
// candidate row is gone. Setting the same status again is a valid update; the
// audit trail lives in StatusHistory, not here.
func UpdateCandidateStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		Update("current_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountCandidates returns the number of candidates matching the filter.
func CountCandidates(ctx context.Context, db *gorm.DB, f CandidateFilter) (int64, error) {
	var total int64
	err := applyCandidateFilter(db.WithContext(ctx).Model(&domain.Candidate{}), f).
		Count(&total).Error
	return total, err
}

// ListCandidatesPage returns a page of candidates matching the filter,
// ordered by the given whitelisted clause. The caller computes offset/limit.
func ListCandidatesPage(ctx context.Context, db *gorm.DB, f CandidateFilter, order string, offset, limit int) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := applyCandidateFilter(db.WithContext(ctx), f).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

func applyCandidateFilter(q *gorm.DB, f CandidateFilter) *gorm.DB {
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.CurrentStatus != "" {
		q = q.Where("current_status = ?", f.CurrentStatus)
	}
	return q
}
