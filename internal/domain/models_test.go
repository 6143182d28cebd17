package domain

import (
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if got := (StagedUpload{}).TableName(); got != "staged_uploads" {
		t.Fatalf("StagedUpload table = %q", got)
	}
	if got := (Candidate{}).TableName(); got != "candidates" {
		t.Fatalf("Candidate table = %q", got)
	}
	if got := (StatusHistory{}).TableName(); got != "candidate_status_history" {
		t.Fatalf("StatusHistory table = %q", got)
	}
}

// The expiry comparison is strict: an upload whose expiry equals the current
// instant is still valid; one second past is not.
func TestStagedUploadExpired_Boundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := &StagedUpload{ExpiresAt: now}

	if u.Expired(now) {
		t.Fatal("expires_at == now must still be valid")
	}
	if !u.Expired(now.Add(time.Second)) {
		t.Fatal("one second past expires_at must be expired")
	}
	if u.Expired(now.Add(-time.Second)) {
		t.Fatal("before expires_at must be valid")
	}
}

func TestValidDepartment(t *testing.T) {
	for _, d := range Departments {
		if !ValidDepartment(d) {
			t.Fatalf("department %q should be valid", d)
		}
	}
	for _, d := range []string{"", "it", "Engineering", "FINANCE"} {
		if ValidDepartment(d) {
			t.Fatalf("department %q should be invalid", d)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !ValidStatus(s) {
			t.Fatalf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"", "SUBMITTED", "hired", "under review"} {
		if ValidStatus(s) {
			t.Fatalf("status %q should be invalid", s)
		}
	}
}
