package models

import "time"

// Job and Course statuses follow the values used by the listing site.
const (
	JobStatusActive      = "ativa"
	JobStatusInactive    = "inativa"
	CourseStatusActive   = "ativo"
	CourseStatusInactive = "inativo"
)

// Job représente une offre d'emploi référencée par le site.
// Seuls les champs nécessaires à la résolution des partages sont modélisés ;
// le reste du CRUD administratif vit ailleurs.
type Job struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Title     string    `gorm:"size:255;not null"`
	Company   string    `gorm:"size:255"`
	Link      string    `gorm:"not null"`
	Status    string    `gorm:"size:10;default:ativa"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Course représente une formation référencée par le site.
type Course struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:255;not null"`
	Institution string    `gorm:"size:255"`
	Link        string    `gorm:"not null"`
	Status      string    `gorm:"size:10;default:ativo"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// ExternalLink returns the outbound URL if the job is still resolvable.
func (j *Job) ExternalLink() (string, bool) {
	if j.Status != JobStatusActive || j.Link == "" {
		return "", false
	}
	return j.Link, true
}

// ExternalLink returns the outbound URL if the course is still resolvable.
func (c *Course) ExternalLink() (string, bool) {
	if c.Status != CourseStatusActive || c.Link == "" {
		return "", false
	}
	return c.Link, true
}
