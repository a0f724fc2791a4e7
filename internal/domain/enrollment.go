package domain

import "time"

// EnrollmentStatus is the participation lifecycle of one account in one event.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentPresent   EnrollmentStatus = "present"
	EnrollmentAbsent    EnrollmentStatus = "absent"
)

// Enrollment links one participant account to one event. The (event, account)
// pair is unique: an account never holds two enrollments in the same event.
type Enrollment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	EventID     uint             `gorm:"not null;uniqueIndex:idx_enrollment_event_account" json:"event_id"`
	Event       *Event           `gorm:"foreignKey:EventID" json:"event,omitempty"`
	AccountID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_event_account" json:"account_id"`
	Status      EnrollmentStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	Notes       string           `gorm:"size:1024" json:"notes"`
	Present     bool             `gorm:"not null;default:false" json:"present"`
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`
	PresentAt   *time.Time       `json:"present_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CanConfirm reports whether the confirm transition is legal. Only pending
// enrollments take a confirmed seat.
func (e *Enrollment) CanConfirm() bool { return e.Status == EnrollmentPending }

// CanMarkPresent reports whether presence may be recorded. Presence is only
// recorded against a confirmed seat.
func (e *Enrollment) CanMarkPresent() bool { return e.Status == EnrollmentConfirmed }

// Attended reports whether the participant was recorded at the event, which
// gates certificate issuance and evaluation.
func (e *Enrollment) Attended() bool { return e.Status == EnrollmentPresent }
