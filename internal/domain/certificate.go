package domain

import "time"

// Certificate attests participation in an event. Owned 1:1 by an enrollment;
// re-issuing overwrites the code rather than creating a second row.
type Certificate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"uniqueIndex;not null" json:"enrollment_id"`
	Code         string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Template     string    `gorm:"size:100;not null;default:'default'" json:"template"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Evaluation is the participant's rating of an attended event. Owned 1:1 by
// an enrollment; a second submission overwrites the first.
type Evaluation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"uniqueIndex;not null" json:"enrollment_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"size:2048" json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RatingValid reports whether the submitted rating is inside the 1..5 scale.
func RatingValid(rating int) bool { return rating >= 1 && rating <= 5 }
