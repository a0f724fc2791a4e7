package domain

import "time"

// VerificationCode is a short-lived, single-use numeric token proving control
// of an email address. At most one unexpired, unused code per account is
// authoritative: issuing a new code invalidates all outstanding ones.
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"index;not null" json:"account_id"`
	Code      string    `gorm:"size:6;uniqueIndex;not null" json:"-"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the code can still be accepted at the given instant.
func (c *VerificationCode) Valid(now time.Time) bool {
	return !c.Used && !now.After(c.ExpiresAt)
}
