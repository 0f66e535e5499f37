package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/axellelanca/sharetracker/internal/models"
	"gorm.io/gorm"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux données
type ClickRepository interface {
	CreateClick(click *models.ShareClick) error
	CountClicksByToken(token string) (int, error)
	CountConversionsByToken(token string) (int, error)
	GetLatestUnconverted(token, sessionID string) (*models.ShareClick, error)
	MarkConverted(clickID uint) error
	TopResourcesByConversions(resourceType string, since time.Time, limit int) ([]models.TopResource, error)
}

// GormClickRepository est l'implémentation de l'interface ClickRepository utilisant GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository crée et retourne une nouvelle instance de GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick insère un nouvel enregistrement de clic dans la base de données.
func (r *GormClickRepository) CreateClick(click *models.ShareClick) error {
	if err := r.db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicksByToken compte le nombre total de clics pour un token donné.
func (r *GormClickRepository) CountClicksByToken(token string) (int, error) {
	var count int64
	if err := r.db.Model(&models.ShareClick{}).Where("share_token = ?", token).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for token %s: %w", token, err)
	}
	return int(count), nil
}

// CountConversionsByToken compte les clics convertis pour un token donné.
func (r *GormClickRepository) CountConversionsByToken(token string) (int, error) {
	var count int64
	if err := r.db.Model(&models.ShareClick{}).
		Where("share_token = ? AND converted = ?", token, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count conversions for token %s: %w", token, err)
	}
	return int(count), nil
}

// GetLatestUnconverted récupère le clic non converti le plus récent pour un
// token (restreint à la session si fournie). Retourne (nil, nil) si aucun.
func (r *GormClickRepository) GetLatestUnconverted(token, sessionID string) (*models.ShareClick, error) {
	query := r.db.Where("share_token = ? AND converted = ?", token, false)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var click models.ShareClick
	if err := query.Order("clicked_at DESC, id DESC").First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find unconverted click for token %s: %w", token, err)
	}
	return &click, nil
}

// MarkConverted passe le champ converted d'un clic à true et horodate la
// conversion. L'opération est idempotente au niveau de la ligne : rejouer la
// mise à jour ne change rien de plus.
func (r *GormClickRepository) MarkConverted(clickID uint) error {
	now := time.Now()
	if err := r.db.Model(&models.ShareClick{}).Where("id = ?", clickID).
		Updates(map[string]interface{}{"converted": true, "converted_at": now}).Error; err != nil {
		return fmt.Errorf("failed to mark click %d converted: %w", clickID, err)
	}
	return nil
}

// TopResourcesByConversions classe les ressources par nombre d'événements de
// conversion dans la fenêtre, via une jointure clics -> tokens. La fenêtre
// porte sur converted_at : une conversion attribuée longtemps après le clic
// compte dans la fenêtre où elle a eu lieu. Les égalités sont départagées par
// resource_id croissant pour un ordre déterministe.
func (r *GormClickRepository) TopResourcesByConversions(resourceType string, since time.Time, limit int) ([]models.TopResource, error) {
	var rows []models.TopResource
	err := r.db.Model(&models.ShareClick{}).
		Select("share_tokens.resource_id AS resource_id, COUNT(*) AS conversion_count").
		Joins("JOIN share_tokens ON share_tokens.token = share_clicks.share_token").
		Where("share_clicks.converted = ? AND share_clicks.converted_at >= ? AND share_tokens.resource_type = ?",
			true, since, resourceType).
		Group("share_tokens.resource_id").
		Order("conversion_count DESC, resource_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank resources by conversions: %w", err)
	}
	return rows, nil
}
