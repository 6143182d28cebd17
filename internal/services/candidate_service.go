// Package services – CandidateService
//
// This file implements the read and admin-side operations on candidates:
// public status lookup with full history, the admin listing
// (filter/sort/paginate), status updates with their append-only history
// entry and best-effort notification, and resume retrieval.
package services

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/repo"
	"github.com/talenthub/go-hr-backend/internal/storage"
)

// adminInfo annotates history entries created through the admin surface.
const adminInfo = "Updated via API"

// CandidateService provides candidate queries and status mutations.
type CandidateService struct {
	DB       *gorm.DB
	Store    storage.BlobStore
	Notifier Notifier
}

// Status returns a candidate and their status history, newest first.
func (s *CandidateService) Status(ctx context.Context, id string) (*domain.Candidate, []domain.StatusHistory, error) {
	cand, err := repo.GetCandidate(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrCandidateNotFound
		}
		return nil, nil, err
	}
	hist, err := repo.ListStatusHistory(ctx, s.DB, id)
	if err != nil {
		return nil, nil, err
	}
	return cand, hist, nil
}

// UpdateStatus sets the candidate's current status unconditionally (no
// transition graph) and appends a history entry, atomically. Re-setting the
// current status still appends: the history is an audit log, not a diff.
// On success a notification is emitted best-effort.
func (s *CandidateService) UpdateStatus(ctx context.Context, id, status, feedback string) (*domain.Candidate, []domain.StatusHistory, error) {
	cand, err := repo.GetCandidate(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrCandidateNotFound
		}
		return nil, nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateCandidateStatus(ctx, tx, id, status); err != nil {
			return err
		}
		_, err := repo.AppendStatusHistory(ctx, tx, id, status, feedback, adminInfo)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	cand.CurrentStatus = status

	log.Info().
		Str("candidate_id", id).
		Str("status", status).
		Msg("candidate status updated")
	if s.Notifier != nil {
		s.Notifier.StatusChanged(ctx, cand, status, feedback)
	}

	hist, err := repo.ListStatusHistory(ctx, s.DB, id)
	if err != nil {
		return nil, nil, err
	}
	return cand, hist, nil
}

// ListPage returns a page of candidates matching the filter, plus the total
// count. It applies defaults for invalid page/pageSize and the whitelisted
// ordering (default newest first).
func (s *CandidateService) ListPage(ctx context.Context, f repo.CandidateFilter, ordering string, page, pageSize int) ([]domain.Candidate, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountCandidates(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Candidate{}, 0, nil
	}

	items, err := repo.ListCandidatesPage(ctx, s.DB, f, repo.CandidateOrderClause(ordering), offset, pageSize)
	return items, total, err
}

// Resume opens the candidate's promoted resume for streaming. The stored
// object name is derived from the file token and the original extension, as
// written at staging time.
func (s *CandidateService) Resume(ctx context.Context, id string) (*domain.Candidate, io.ReadCloser, error) {
	cand, err := repo.GetCandidate(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrCandidateNotFound
		}
		return nil, nil, err
	}
	if cand.ResumeURL == "" || cand.ResumeFileID == "" {
		return nil, nil, ErrNoResume
	}

	storedName := "resume_" + cand.ResumeFileID + path.Ext(cand.ResumeFilename)
	rc, err := s.Store.Open(ctx, cand.ID, storedName)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, ErrNoResume
		}
		return nil, nil, err
	}
	return cand, rc, nil
}
