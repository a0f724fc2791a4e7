package domain

import "time"

// EventStatus is the publication lifecycle of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventFinished  EventStatus = "finished"
)

// Category groups events and articles.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:1024" json:"description"`
	Color       string `gorm:"size:7;default:'#007bff'" json:"color"`
}

// Event is a bookable happening organized by a staff account. Capacity 0
// means unlimited seats.
type Event struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Title          string      `gorm:"size:200;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	CategoryID     uint        `gorm:"index;not null" json:"category_id"`
	Category       *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	StartsAt       time.Time   `gorm:"index;not null" json:"starts_at"`
	EndsAt         time.Time   `gorm:"not null" json:"ends_at"`
	Location       string      `gorm:"size:200" json:"location"`
	Address        string      `gorm:"size:512" json:"address"`
	Capacity       int         `gorm:"not null;default:0" json:"capacity"`
	Price          int64       `gorm:"not null;default:0" json:"price_cents"`
	ImageKey       string      `gorm:"size:512" json:"image_key"`
	ExternalURL    string      `gorm:"size:512" json:"external_url"`
	UseExternalURL bool        `gorm:"not null;default:false" json:"use_external_url"`
	Featured       bool        `gorm:"not null;default:false" json:"featured"`
	Status         EventStatus `gorm:"size:20;index;not null;default:'draft'" json:"status"`
	OrganizerID    uint        `gorm:"index;not null" json:"organizer_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Unlimited reports whether the event has no seat cap.
func (e *Event) Unlimited() bool { return e.Capacity == 0 }

// AvailableSeats returns the free seats given the number of confirmed
// enrollments. For unlimited events it returns -1.
func (e *Event) AvailableSeats(confirmed int) int {
	if e.Unlimited() {
		return -1
	}
	if remaining := e.Capacity - confirmed; remaining > 0 {
		return remaining
	}
	return 0
}

// Full reports whether no seats remain given the confirmed count.
func (e *Event) Full(confirmed int) bool {
	return !e.Unlimited() && e.AvailableSeats(confirmed) == 0
}

// Running reports whether the event is in progress at the given instant.
func (e *Event) Running(now time.Time) bool {
	return !now.Before(e.StartsAt) && !now.After(e.EndsAt)
}

// HasExternalSignup reports whether enrollment happens on an external site.
func (e *Event) HasExternalSignup() bool {
	return e.UseExternalURL && e.ExternalURL != ""
}
