package models

import "time"

// ShareClick represents one click recorded against a share token.
// This model is append-only: rows are inserted once and never deleted.
type ShareClick struct {
	// ID is the primary key with auto-increment functionality
	ID uint `gorm:"primaryKey"`

	// ShareToken references the token the click was attributed to
	// - index: clicks are always queried per token when recomputing analytics
	ShareToken string `gorm:"size:64;not null;index"`

	// SessionID is an ephemeral client-side identifier, used to attribute a
	// later conversion back to this click
	SessionID string `gorm:"size:64;index"`

	// UserAgent stores the browser/client information from the HTTP request
	// - size:255: limits the database column to 255 characters
	UserAgent string `gorm:"size:255"`

	// ClientIP stores the address of the visitor who followed the share link
	// - size:45: sufficient for both IPv4 and IPv6 addresses
	ClientIP string `gorm:"size:45"`

	// ClickedAt records the exact moment when the click occurred
	ClickedAt time.Time

	// Converted flips false -> true exactly once, when the visitor proceeded
	// to the external resource
	Converted bool `gorm:"default:false"`

	// ConvertedAt records when the conversion was attributed; nil while the
	// click is unconverted. A conversion reported long after the click is
	// windowed by this timestamp, not by ClickedAt.
	ConvertedAt *time.Time
}
