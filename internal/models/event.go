package models

import "time"

// Event types accepted by the user-event tracking endpoint.
const (
	EventTypeView       = "view"
	EventTypeClick      = "click"
	EventTypeShare      = "share"
	EventTypeConversion = "conversion"
)

// UserEvent is a raw tracking event (view/click/share/conversion) recorded
// against a resource, persisted for the advanced analytics screens.
type UserEvent struct {
	ID           uint   `gorm:"primaryKey"`
	EventType    string `gorm:"size:12;not null;index"`
	ResourceType string `gorm:"size:10;not null;index"`
	ResourceID   string `gorm:"size:36;not null;index"`
	SessionID    string `gorm:"size:64"`
	Referrer     string `gorm:"size:255"`
	UserAgent    string `gorm:"size:255"`
	IPAddress    string `gorm:"size:45"`
	Timestamp    time.Time
}

// TrackingEvent represents a raw tracking event intended to be passed through
// channels. This lightweight struct is used for asynchronous processing
// between goroutines; workers turn it into a UserEvent row later.
type TrackingEvent struct {
	EventType    string
	ResourceType string
	ResourceID   string
	SessionID    string
	Referrer     string
	UserAgent    string
	IPAddress    string
	Timestamp    time.Time
}

// ValidEventType checks the event type against the known set.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeView, EventTypeClick, EventTypeShare, EventTypeConversion:
		return true
	}
	return false
}
