package domain

import "time"

// Account is a registered member of the community site. Accounts are created
// inactive and become active exactly once, when the email verification code
// is accepted.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Handle       string    `gorm:"size:64;uniqueIndex;not null" json:"handle"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Active       bool      `gorm:"not null;default:false" json:"active"`
	Staff        bool      `gorm:"not null;default:false" json:"staff"`
	Profile      *Profile  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the extended member attributes. EmailVerified is flipped only
// by code verification, never by a profile edit.
type Profile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AccountID     uint       `gorm:"uniqueIndex;not null" json:"account_id"`
	FullName      string     `gorm:"size:200" json:"full_name"`
	Phone         string     `gorm:"size:20" json:"phone"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Address       string     `gorm:"size:512" json:"address"`
	PostalCode    string     `gorm:"size:8" json:"postal_code"`
	City          string     `gorm:"size:100" json:"city"`
	District      string     `gorm:"size:100" json:"district"`
	Bio           string     `gorm:"size:2048" json:"bio"`
	PhotoKey      string     `gorm:"size:512" json:"photo_key"`
	Newsletter    bool       `gorm:"not null;default:true" json:"newsletter"`
	EmailVerified bool       `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
