// Package domain defines the persistence models for staged resume uploads,
// candidates, and status history. These types are mapped with GORM and form
// the core data layer of the HR candidate-tracking application.
package domain

import (
	"time"
)

// Department enumerates the hiring departments a candidate can apply to.
const (
	DepartmentIT      = "IT"
	DepartmentHR      = "HR"
	DepartmentFinance = "Finance"
)

// Application status values. SUBMITTED is the initial status assigned at
// registration; the remaining values are set by admins. No transition graph
// is enforced: any status may follow any other.
const (
	StatusSubmitted          = "submitted"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusRejected           = "rejected"
	StatusAccepted           = "accepted"
)

// Departments lists all valid department values, in display order.
var Departments = []string{DepartmentIT, DepartmentHR, DepartmentFinance}

// Statuses lists all valid application status values.
var Statuses = []string{
	StatusSubmitted,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusRejected,
	StatusAccepted,
}

// ValidDepartment reports whether s is a known department value.
func ValidDepartment(s string) bool {
	for _, d := range Departments {
		if s == d {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known application status value.
func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Storage backend discriminators recorded on a StagedUpload so the blob can
// be located regardless of which backend staged it.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StagedUpload tracks a resume file that has been uploaded but not yet
// associated with a candidate. Rows are created by the upload endpoint and
// consumed exactly once by a successful registration.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FileID: opaque public token handed to clients; unique and indexed.
//   - OriginalFilename / ContentType / FileSize: as received from the client
//     (content type is the sniffed value, not the client's declaration).
//   - StorageType / StorageKey / StoredFilename: backend locator sufficient to
//     fetch, promote, or delete the physical bytes.
//   - ExpiresAt: hard expiry (creation + 1 hour); evaluated lazily at use.
//   - IsUsed / UsedAt: single-use consumption marker, flipped atomically by
//     the registration flow.
type StagedUpload struct {
	ID               string     `json:"-"                 gorm:"type:char(36);primaryKey"`
	FileID           string     `json:"file_id"           gorm:"type:char(36);not null;uniqueIndex:ux_uploads_file_id"`
	OriginalFilename string     `json:"filename"          gorm:"type:varchar(255);not null"`
	ContentType      string     `json:"content_type"      gorm:"type:varchar(100);not null"`
	FileSize         int64      `json:"file_size"         gorm:"not null"`
	StorageType      string     `json:"-"                 gorm:"type:varchar(16);not null"`
	StorageKey       string     `json:"-"                 gorm:"type:varchar(512);not null"`
	StoredFilename   string     `json:"-"                 gorm:"type:varchar(255);not null"`
	CreatedAt        time.Time  `json:"uploaded_at"`
	ExpiresAt        time.Time  `json:"expires_at"        gorm:"index"`
	IsUsed           bool       `json:"is_used"           gorm:"not null;default:false;index"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
}

// TableName returns the database table name for StagedUpload.
func (StagedUpload) TableName() string { return "staged_uploads" }

// Expired reports whether the upload is expired as of the given instant.
// The comparison is strict (now > expires_at): an upload whose expiry equals
// the current instant is still valid.
func (u *StagedUpload) Expired(at time.Time) bool {
	return at.After(u.ExpiresAt)
}

// Candidate is the core business entity: one row per registered applicant.
// Candidates are created only by the registration flow (never partially: the
// row either ends up with a promoted permanent resume or is rolled back), and
// afterwards only CurrentStatus is mutated, by admin status updates.
//
// Uniqueness: Email is stored lowercased and backed by a unique index, which
// together give case-insensitive uniqueness; Phone is unique exactly as
// provided. No soft deletes: the registration rollback must hard-delete the
// row so the unique email/phone become available again for a retry.
type Candidate struct {
	ID                string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	FullName          string    `json:"full_name"           gorm:"type:varchar(255);not null"`
	Email             string    `json:"email"               gorm:"type:varchar(254);not null;uniqueIndex:ux_candidates_email"`
	Phone             string    `json:"phone"               gorm:"type:varchar(20);not null;uniqueIndex:ux_candidates_phone"`
	DateOfBirth       time.Time `json:"-"                   gorm:"not null"`
	YearsOfExperience int       `json:"years_of_experience" gorm:"not null;check:years_of_experience >= 0"`
	Department        string    `json:"department"          gorm:"type:varchar(20);not null;index;check:department IN ('IT','HR','Finance')"`

	// Resume file information, filled in after promotion succeeds.
	ResumeFileID   string `json:"resume_file_id"  gorm:"type:char(36);not null;default:''"`
	ResumeFilename string `json:"resume_filename" gorm:"type:varchar(255);not null;default:''"`
	ResumeURL      string `json:"resume_url"      gorm:"type:varchar(1024);not null;default:''"`

	CurrentStatus string `json:"current_status" gorm:"type:varchar(20);not null;default:'submitted';index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string { return "candidates" }

// StatusHistory is one immutable audit record per status transition,
// including the initial "submitted" entry created with the candidate.
// Rows are never updated; re-setting the current status appends a new row.
// Deleting a candidate cascades to its history.
type StatusHistory struct {
	ID          string    `json:"-"          gorm:"type:char(36);primaryKey"`
	CandidateID string    `json:"-"          gorm:"type:char(36);not null;index:idx_history_candidate,priority:1"`
	Status      string    `json:"status"     gorm:"type:varchar(20);not null"`
	Feedback    string    `json:"feedback"   gorm:"type:text;not null;default:''"`
	AdminInfo   string    `json:"admin_info" gorm:"type:varchar(255);not null;default:''"`
	ChangedAt   time.Time `json:"changed_at" gorm:"index:idx_history_candidate,priority:2"`

	// Candidate is the owning applicant. History is cascade-deleted when the
	// candidate row is removed (including the registration rollback path).
	Candidate Candidate `json:"-" gorm:"foreignKey:CandidateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for StatusHistory.
func (StatusHistory) TableName() string { return "candidate_status_history" }
