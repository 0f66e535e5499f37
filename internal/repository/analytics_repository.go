package repository

import (
	"fmt"

	"github.com/axellelanca/sharetracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository est une interface qui définit les méthodes d'accès aux données
type AnalyticsRepository interface {
	UpsertAnalytics(record *models.ShareAnalytics) error
	GetAnalyticsByToken(token string) (*models.ShareAnalytics, error)
	GetAnalyticsForResource(resourceType, resourceID string) ([]models.ShareAnalytics, error)
}

// GormAnalyticsRepository est l'implémentation de AnalyticsRepository utilisant GORM.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository crée et retourne une nouvelle instance de GormAnalyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// UpsertAnalytics insère le rollup s'il n'existe pas encore pour ce token,
// sinon l'écrase entièrement. Deux recomputes concurrents peuvent se croiser :
// le dernier écrit gagne, et les deux convergent vers le même recompte.
func (r *GormAnalyticsRepository) UpsertAnalytics(record *models.ShareAnalytics) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "share_token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"resource_type", "resource_id", "total_shares",
			"total_clicks", "total_conversions", "conversion_rate", "last_updated",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert analytics for token %s: %w", record.ShareToken, err)
	}
	return nil
}

// GetAnalyticsByToken récupère le rollup d'un token.
func (r *GormAnalyticsRepository) GetAnalyticsByToken(token string) (*models.ShareAnalytics, error) {
	var record models.ShareAnalytics
	if err := r.db.Where("share_token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAnalyticsForResource récupère les rollups de tous les tokens d'une
// ressource (une ressource peut avoir été partagée plusieurs fois).
func (r *GormAnalyticsRepository) GetAnalyticsForResource(resourceType, resourceID string) ([]models.ShareAnalytics, error) {
	var records []models.ShareAnalytics
	if err := r.db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve analytics for %s %s: %w", resourceType, resourceID, err)
	}
	return records, nil
}
