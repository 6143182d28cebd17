// Package services – RegistrationService
//
// This file implements the registration saga: precondition checks against
// the staged upload and the candidate uniqueness rules, creation of the
// candidate row, promotion of the staged blob to permanent storage, and the
// finalizing transaction (resume columns, single-use token consumption,
// initial history entry). Promotion failure triggers the compensating
// action: the candidate row is deleted and the staged upload is left
// untouched so the token can be retried until it expires.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/repo"
	"github.com/talenthub/go-hr-backend/internal/storage"
)

// minWorkingAge anchors the experience bound: a candidate cannot claim more
// experience than their age minus this.
const minWorkingAge = 16

// initialFeedback is recorded on the history entry created with the
// candidate.
const initialFeedback = "Application submitted successfully"

// errUploadRace marks the losing side of two registrations racing on one
// file token. Internal to the saga; surfaced as a consumed-token field
// error.
var errUploadRace = errors.New("upload consumed concurrently")

// RegistrationInput carries the already-structurally-valid registration
// fields. Format checks (email syntax, enum membership, non-negative
// experience, date parsing) happen at the handler; this service owns the
// business rules.
type RegistrationInput struct {
	FullName          string
	Email             string
	Phone             string
	DateOfBirth       time.Time
	YearsOfExperience int
	Department        string
	FileID            string
}

// RegistrationService coordinates the upload→register flow.
type RegistrationService struct {
	DB    *gorm.DB
	Store storage.BlobStore

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates a candidate from in, consuming the staged upload named by
// in.FileID.
//
// Preconditions (all reported together as FieldErrors, nothing persisted):
//  1. the file token resolves to a staged upload;
//  2. the upload is not expired (strictly now > expires_at);
//  3. the upload has not been consumed;
//  4. the email is unique case-insensitively;
//  5. the phone is unique exactly;
//  6. years of experience does not exceed max(0, age−16).
//
// Execution order is create row → promote blob → finalize row, chosen so the
// compensating step (deleting a row) is cheaper and safer than reversing a
// blob promotion. The single-use guarantee is enforced by a conditional
// UPDATE on the token inside the finalizing transaction; the loser of a race
// rolls back its candidate and discards its promoted copy.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*domain.Candidate, error) {
	now := s.now()
	email := strings.ToLower(strings.TrimSpace(in.Email))

	ferrs := FieldErrors{}

	up, err := repo.GetStagedUpload(ctx, s.DB, in.FileID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		ferrs["file_id"] = msgInvalidFileID
	case err != nil:
		return nil, err
	case up.Expired(now):
		ferrs["file_id"] = msgUploadExpired
	case up.IsUsed:
		ferrs["file_id"] = msgUploadConsumed
	}

	if exists, err := repo.EmailExists(ctx, s.DB, email); err != nil {
		return nil, err
	} else if exists {
		ferrs["email"] = msgDuplicateEmail
	}
	if exists, err := repo.PhoneExists(ctx, s.DB, in.Phone); err != nil {
		return nil, err
	} else if exists {
		ferrs["phone"] = msgDuplicatePhone
	}

	age := ageInYears(in.DateOfBirth, now)
	if maxExp := maxExperience(age); in.YearsOfExperience > maxExp {
		ferrs["years_of_experience"] = fmt.Sprintf(
			"Years of experience (%d) cannot exceed %d years based on your age (%d years old).",
			in.YearsOfExperience, maxExp, age)
	}

	if len(ferrs) > 0 {
		registrations.WithLabelValues("rejected").Inc()
		return nil, ferrs
	}

	cand := &domain.Candidate{
		ID:                uuid.NewString(),
		FullName:          in.FullName,
		Email:             email,
		Phone:             in.Phone,
		DateOfBirth:       in.DateOfBirth,
		YearsOfExperience: in.YearsOfExperience,
		Department:        in.Department,
		CurrentStatus:     domain.StatusSubmitted,
		CreatedAt:         now,
	}
	if err := repo.CreateCandidate(ctx, s.DB, cand); err != nil {
		// A pre-check race lost to a concurrent insert; the unique index is
		// the authority.
		if isDuplicate(err) {
			registrations.WithLabelValues("rejected").Inc()
			return nil, duplicateFieldErrors(err)
		}
		return nil, err
	}

	promoted, err := s.Store.Promote(ctx, storage.Descriptor{
		Kind:     up.StorageType,
		Key:      up.StorageKey,
		Filename: up.StoredFilename,
	}, cand.ID)
	if err != nil {
		log.Error().Err(err).
			Str("candidate_id", cand.ID).
			Str("file_id", up.FileID).
			Msg("registration: blob promotion failed, rolling back candidate")
		s.rollbackCandidate(ctx, cand.ID)
		registrations.WithLabelValues("failed").Inc()
		return nil, ErrFileProcessing
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateCandidateResume(ctx, tx, cand.ID, up.FileID, up.OriginalFilename, promoted.URL); err != nil {
			return err
		}
		if err := repo.MarkUploadUsed(ctx, tx, up.FileID, now); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errUploadRace
			}
			return err
		}
		if _, err := repo.AppendStatusHistory(ctx, tx, cand.ID, domain.StatusSubmitted, initialFeedback, ""); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		s.rollbackCandidate(ctx, cand.ID)
		s.Store.Discard(ctx, promoted.Descriptor)
		if errors.Is(txErr, errUploadRace) {
			registrations.WithLabelValues("rejected").Inc()
			return nil, FieldErrors{"file_id": msgUploadConsumed}
		}
		registrations.WithLabelValues("failed").Inc()
		return nil, txErr
	}

	cand.ResumeFileID = up.FileID
	cand.ResumeFilename = up.OriginalFilename
	cand.ResumeURL = promoted.URL

	log.Info().
		Str("candidate_id", cand.ID).
		Str("department", cand.Department).
		Msg("candidate registered")
	registrations.WithLabelValues("registered").Inc()
	return cand, nil
}

// rollbackCandidate is the saga's compensating action. Its own failure is
// logged, not returned: the caller is already on an error path and the
// orphaned row does not hold a consumed token.
func (s *RegistrationService) rollbackCandidate(ctx context.Context, id string) {
	if err := repo.DeleteCandidate(ctx, s.DB, id); err != nil {
		log.Error().Err(err).Str("candidate_id", id).Msg("registration: rollback delete failed")
	}
}

// ageInYears computes full years between dob and now, decrementing when the
// birthday has not yet occurred this year.
func ageInYears(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// maxExperience bounds claimable experience by age; never negative.
func maxExperience(age int) int {
	if age < minWorkingAge {
		return 0
	}
	return age - minWorkingAge
}
