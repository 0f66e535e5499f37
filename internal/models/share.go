package models

import "time"

// Resource types that a share token can be bound to.
const (
	ResourceTypeJob    = "job"
	ResourceTypeCourse = "course"
)

// ShareToken représente un lien de partage dans la base de données.
// Le token est un identifiant opaque distribué via WhatsApp ; il pointe
// vers une vaga ou un curso et expire après un horizon fixe.
type ShareToken struct {
	ID           uint      `gorm:"primaryKey"`
	Token        string    `gorm:"uniqueIndex;size:64;not null"`
	ResourceType string    `gorm:"size:10;not null"`
	ResourceID   string    `gorm:"size:36;not null;index"`
	UserPhone    string    `gorm:"size:20"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time
	Active       bool `gorm:"default:true"`
}

// Expired reports whether the token's expiry horizon has passed at 'now'.
// A token can be expired even if Active was never explicitly flipped.
func (s *ShareToken) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ValidResourceType checks the resource type against the known set.
func ValidResourceType(t string) bool {
	return t == ResourceTypeJob || t == ResourceTypeCourse
}
