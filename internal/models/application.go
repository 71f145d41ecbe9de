// internal/models/application.go
package models

import "time"

// ApplicationStatus is the lifecycle state of a clearance application.
type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a decision state. The store does not guard
// terminal states against further transitions; this only controls when
// completed_date is stamped.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application is a rates-clearance application record.
type Application struct {
	ID                string            `json:"id"`
	ReferenceNumber   string            `json:"referenceNumber"`
	FullName          string            `json:"fullName"`
	IDNumber          string            `json:"idNumber"`
	PhoneNumber       string            `json:"phoneNumber"`
	Email             string            `json:"email,omitempty"`
	PropertyAddress   string            `json:"propertyAddress"`
	StandNumber       string            `json:"standNumber"`
	PropertyType      string            `json:"propertyType"`
	Reason            string            `json:"reason"`
	Documents         []string          `json:"documents"`
	UploadedDocuments []string          `json:"uploadedDocuments"`
	Status            ApplicationStatus `json:"status"`
	SubmittedDate     time.Time         `json:"submittedDate"`
	ReviewDate        *time.Time        `json:"reviewDate,omitempty"`
	CompletedDate     *time.Time        `json:"completedDate,omitempty"`
	AdminNotes        string            `json:"adminNotes,omitempty"`
	ReviewedBy        string            `json:"reviewedBy,omitempty"`
}

// ApplicationInput carries the citizen-supplied fields of a new submission.
// Email is the only optional field.
type ApplicationInput struct {
	FullName          string   `json:"fullName"`
	IDNumber          string   `json:"idNumber"`
	PhoneNumber       string   `json:"phoneNumber"`
	Email             string   `json:"email,omitempty"`
	PropertyAddress   string   `json:"propertyAddress"`
	StandNumber       string   `json:"standNumber"`
	PropertyType      string   `json:"propertyType"`
	Reason            string   `json:"reason"`
	Documents         []string `json:"documents,omitempty"`
	UploadedDocuments []string `json:"uploadedDocuments,omitempty"`
}

// StatusUpdate carries an administrator decision. Nil pointer fields mean
// "leave the stored value alone"; non-nil values overwrite.
type StatusUpdate struct {
	Status     ApplicationStatus `json:"status"`
	ReviewedBy *string           `json:"reviewedBy,omitempty"`
	AdminNotes *string           `json:"adminNotes,omitempty"`
	Reason     *string           `json:"reason,omitempty"`
}
