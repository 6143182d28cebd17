package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talenthub/go-hr-backend/internal/domain"
	"github.com/talenthub/go-hr-backend/internal/repo"
)

// fixedNow anchors the clock for deterministic expiry and age math.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// seedStagedUpload inserts a redeemable upload row expiring at the given
// instant.
func seedStagedUpload(t *testing.T, db *gorm.DB, expiresAt time.Time, used bool) *domain.StagedUpload {
	t.Helper()
	fileID := uuid.NewString()
	up := &domain.StagedUpload{
		FileID:           fileID,
		OriginalFilename: "john_cv.pdf",
		ContentType:      "application/pdf",
		FileSize:         2048,
		StorageType:      domain.StorageLocal,
		StorageKey:       "temp_resumes/" + fileID + "/resume_" + fileID + ".pdf",
		StoredFilename:   "resume_" + fileID + ".pdf",
		CreatedAt:        expiresAt.Add(-time.Hour),
		ExpiresAt:        expiresAt,
		IsUsed:           used,
	}
	if err := repo.CreateStagedUpload(context.Background(), db, up); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return up
}

// validInput returns a registration input that passes every precondition
// against fixedNow (age 35, 10 years experience).
func validInput(fileID string) RegistrationInput {
	return RegistrationInput{
		FullName:          "John Doe",
		Email:             "john.doe@example.com",
		Phone:             "+306900000001",
		DateOfBirth:       time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		YearsOfExperience: 10,
		Department:        domain.DepartmentIT,
		FileID:            fileID,
	}
}

func newRegService(db *gorm.DB, store *fakeStore) *RegistrationService {
	return &RegistrationService{DB: db, Store: store, Now: func() time.Time { return fixedNow }}
}

func TestRegister_Success(t *testing.T) {
	db := newServiceDB(t)
	store := &fakeStore{}
	up := seedStagedUpload(t, db, fixedNow.Add(30*time.Minute), false)
	svc := newRegService(db, store)

	cand, err := svc.Register(context.Background(), validInput(up.FileID))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if cand.ID == "" || cand.CurrentStatus != domain.StatusSubmitted {
		t.Fatalf("unexpected candidate: %+v", cand)
	}
	if cand.ResumeFileID != up.FileID || cand.ResumeFilename != "john_cv.pdf" || cand.ResumeURL == "" {
		t.Fatalf("resume fields not filled: %+v", cand)
	}
	if len(store.promoted) != 1 {
		t.Fatalf("promotions = %d, want 1", len(store.promoted))
	}

	// Token consumed.
	got, err := repo.GetStagedUpload(context.Background(), db, up.FileID)
	if err != nil {
		t.Fatalf("reload upload: %v", err)
	}
	if !got.IsUsed || got.UsedAt == nil {
		t.Fatalf("upload not consumed: %+v", got)
	}

	// Initial history entry written atomically with the registration.
	hist, err := repo.ListStatusHistory(context.Background(), db, cand.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Status != domain.StatusSubmitted || hist[0].Feedback != "Application submitted successfully" {
		t.Fatalf("initial history wrong: %+v", hist)
	}

	// Email persisted lowercased.
	if cand.Email != "john.doe@example.com" {
		t.Fatalf("email = %q", cand.Email)
	}
}

func TestRegister_InvalidToken(t *testing.T) {
	db := newServiceDB(t)
	svc := newRegService(db, &fakeStore{})

	_, err := svc.Register(context.Background(), validInput(uuid.NewString()))
	fields, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fields["file_id"] != "Invalid file ID. Please upload the file first." {
		t.Fatalf("file_id message = %q", fields["file_id"])
	}
	assertNoCandidates(t, db)
}

// Expiry is strict: a token whose expiry equals now is still redeemable; one
// second past is not.
func TestRegister_ExpiryBoundary(t *testing.T) {
	t.Run("expires_at == now passes", func(t *testing.T) {
		db := newServiceDB(t)
		store := &fakeStore{}
		up := seedStagedUpload(t, db, fixedNow, false)
		svc := newRegService(db, store)

		if _, err := svc.Register(context.Background(), validInput(up.FileID)); err != nil {
			t.Fatalf("Register at boundary: %v", err)
		}
	})

	t.Run("expires_at == now-1s fails", func(t *testing.T) {
		db := newServiceDB(t)
		up := seedStagedUpload(t, db, fixedNow.Add(-time.Second), false)
		svc := newRegService(db, &fakeStore{})

		_, err := svc.Register(context.Background(), validInput(up.FileID))
		fields, ok := AsFieldErrors(err)
		if !ok || fields["file_id"] != "File upload has expired. Please upload the file again." {
			t.Fatalf("expected expiry field error, got %v", err)
		}
		assertNoCandidates(t, db)
	})
}

func TestRegister_ConsumedToken(t *testing.T) {
	db := newServiceDB(t)
	up := seedStagedUpload(t, db, fixedNow.Add(time.Hour), true)
	svc := newRegService(db, &fakeStore{})

	_, err := svc.Register(context.Background(), validInput(up.FileID))
	fields, ok := AsFieldErrors(err)
	if !ok || fields["file_id"] != "This file has already been used for another registration." {
		t.Fatalf("expected consumed field error, got %v", err)
	}
}

// Token single-use: the second registration with the same token must fail
// and must not create a second candidate or re-promote the blob.
func TestRegister_TokenSingleUse(t *testing.T) {
	db := newServiceDB(t)
	store := &fakeStore{}
	up := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	svc := newRegService(db, store)

	if _, err := svc.Register(context.Background(), validInput(up.FileID)); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	second := validInput(up.FileID)
	second.Email = "someone.else@example.com"
	second.Phone = "+306900000002"
	_, err := svc.Register(context.Background(), second)
	fields, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("second Register: expected FieldErrors, got %v", err)
	}
	if _, has := fields["file_id"]; !has {
		t.Fatalf("second Register should fail on file_id, got %v", fields)
	}

	var n int64
	db.Model(&domain.Candidate{}).Count(&n)
	if n != 1 {
		t.Fatalf("candidates = %d, want 1", n)
	}
	if len(store.promoted) != 1 {
		t.Fatalf("promotions = %d, want 1", len(store.promoted))
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	db := newServiceDB(t)
	store := &fakeStore{}
	svc := newRegService(db, store)

	up1 := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	first := validInput(up1.FileID)
	first.Email = "a@x.com"
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	up2 := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	second := validInput(up2.FileID)
	second.Email = "A@X.com"
	second.Phone = "+306900000099"
	_, err := svc.Register(context.Background(), second)
	fields, ok := AsFieldErrors(err)
	if !ok || fields["email"] != "A candidate with this email already exists." {
		t.Fatalf("expected duplicate-email field error, got %v", err)
	}

	// The losing token stays redeemable.
	got, _ := repo.GetStagedUpload(context.Background(), db, up2.FileID)
	if got.IsUsed {
		t.Fatal("rejected registration must not consume the token")
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	db := newServiceDB(t)
	svc := newRegService(db, &fakeStore{})

	up1 := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	if _, err := svc.Register(context.Background(), validInput(up1.FileID)); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	up2 := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	second := validInput(up2.FileID)
	second.Email = "other@example.com" // same phone as first
	_, err := svc.Register(context.Background(), second)
	fields, ok := AsFieldErrors(err)
	if !ok || fields["phone"] != "A candidate with this phone number already exists." {
		t.Fatalf("expected duplicate-phone field error, got %v", err)
	}
}

// Age 30 at fixedNow → max experience 14: 14 accepted, 15 rejected.
func TestRegister_AgeExperienceBound(t *testing.T) {
	dob := time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC) // turns 30 exactly at fixedNow's date

	t.Run("at bound accepted", func(t *testing.T) {
		db := newServiceDB(t)
		up := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
		svc := newRegService(db, &fakeStore{})

		in := validInput(up.FileID)
		in.DateOfBirth = dob
		in.YearsOfExperience = 14
		if _, err := svc.Register(context.Background(), in); err != nil {
			t.Fatalf("experience at bound must pass: %v", err)
		}
	})

	t.Run("over bound rejected", func(t *testing.T) {
		db := newServiceDB(t)
		up := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
		svc := newRegService(db, &fakeStore{})

		in := validInput(up.FileID)
		in.DateOfBirth = dob
		in.YearsOfExperience = 15
		_, err := svc.Register(context.Background(), in)
		fields, ok := AsFieldErrors(err)
		if !ok {
			t.Fatalf("expected FieldErrors, got %v", err)
		}
		if _, has := fields["years_of_experience"]; !has {
			t.Fatalf("expected years_of_experience error, got %v", fields)
		}
		assertNoCandidates(t, db)
	})
}

// Rollback on promotion failure: no candidate row remains and the token is
// still unused, so the client can retry until expiry.
func TestRegister_PromotionFailureRollsBack(t *testing.T) {
	db := newServiceDB(t)
	store := &fakeStore{promoteErr: errors.New("s3 unavailable")}
	up := seedStagedUpload(t, db, fixedNow.Add(time.Hour), false)
	svc := newRegService(db, store)

	_, err := svc.Register(context.Background(), validInput(up.FileID))
	if !errors.Is(err, ErrFileProcessing) {
		t.Fatalf("err = %v, want ErrFileProcessing", err)
	}

	assertNoCandidates(t, db)
	got, _ := repo.GetStagedUpload(context.Background(), db, up.FileID)
	if got.IsUsed {
		t.Fatal("token must remain unused after promotion failure")
	}

	// Retry with the same token succeeds once the backend recovers.
	store.promoteErr = nil
	if _, err := svc.Register(context.Background(), validInput(up.FileID)); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}

func TestAgeInYears(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		dob  time.Time
		want int
	}{
		{time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC), 30}, // birthday today
		{time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC), 29}, // birthday tomorrow
		{time.Date(1995, 6, 14, 0, 0, 0, 0, time.UTC), 30}, // birthday yesterday
		{time.Date(1995, 12, 1, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range cases {
		if got := ageInYears(tc.dob, now); got != tc.want {
			t.Errorf("ageInYears(%v) = %d, want %d", tc.dob, got, tc.want)
		}
	}
}

func TestMaxExperience(t *testing.T) {
	cases := []struct{ age, want int }{
		{15, 0}, {16, 0}, {17, 1}, {30, 14}, {60, 44},
	}
	for _, tc := range cases {
		if got := maxExperience(tc.age); got != tc.want {
			t.Errorf("maxExperience(%d) = %d, want %d", tc.age, got, tc.want)
		}
	}
}

func assertNoCandidates(t *testing.T, db *gorm.DB) {
	t.Helper()
	var n int64
	db.Model(&domain.Candidate{}).Count(&n)
	if n != 0 {
		t.Fatalf("candidates = %d, want 0", n)
	}
}
