package models

import "time"

// ShareAnalytics is the materialized rollup of clicks and conversions for one
// share token. It is recomputed from the click log on every mutation (full
// recount, not incremental deltas) so the counters cannot drift.
type ShareAnalytics struct {
	ID           uint   `gorm:"primaryKey"`
	ShareToken   string `gorm:"uniqueIndex;size:64;not null"`
	ResourceType string `gorm:"size:10;not null;index"`
	ResourceID   string `gorm:"size:36;not null;index"`

	TotalShares      int `gorm:"default:0"`
	TotalClicks      int `gorm:"default:0"`
	TotalConversions int `gorm:"default:0"`

	// ConversionRate is a percentage with two decimals, stored as a string
	// ("30.00"). "0" when no click was recorded yet.
	ConversionRate string `gorm:"size:10;default:0"`

	LastUpdated time.Time
}

// TopResource est une ligne du classement des ressources par conversions.
// Le classement agrège les événements de conversion d'une fenêtre glissante,
// pas les rollups par token (une ressource peut avoir plusieurs tokens).
type TopResource struct {
	ResourceID      string `json:"resource_id"`
	ConversionCount int    `json:"conversion_count"`
}
