package repository

import (
	"fmt"
	"time"

	"github.com/axellelanca/sharetracker/internal/models"
	"gorm.io/gorm"
)

// ShareRepository est une interface qui définit les méthodes d'accès aux données
type ShareRepository interface {
	CreateShare(share *models.ShareToken) error
	GetShareByToken(token string) (*models.ShareToken, error)
	DeactivateShare(token string) error
	GetExpiredActiveShares(now time.Time) ([]models.ShareToken, error)
}

// GormShareRepository est l'implémentation de l'interface ShareRepository utilisant GORM.
type GormShareRepository struct {
	db *gorm.DB
}

// NewShareRepository crée et retourne une nouvelle instance de GormShareRepository.
func NewShareRepository(db *gorm.DB) *GormShareRepository {
	return &GormShareRepository{db: db}
}

// CreateShare insère un nouveau token de partage dans la base de données.
func (r *GormShareRepository) CreateShare(share *models.ShareToken) error {
	if err := r.db.Create(share).Error; err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

// GetShareByToken récupère un partage de la base de données en utilisant son token.
func (r *GormShareRepository) GetShareByToken(token string) (*models.ShareToken, error) {
	var share models.ShareToken
	if err := r.db.Where("token = ?", token).First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// DeactivateShare désactive logiquement un token (Active = false).
func (r *GormShareRepository) DeactivateShare(token string) error {
	if err := r.db.Model(&models.ShareToken{}).Where("token = ?", token).
		Update("active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate share %s: %w", token, err)
	}
	return nil
}

// GetExpiredActiveShares récupère les tokens encore actifs dont l'horizon
// d'expiration est dépassé. Utilisé par le balayage périodique du moniteur.
func (r *GormShareRepository) GetExpiredActiveShares(now time.Time) ([]models.ShareToken, error) {
	var shares []models.ShareToken
	if err := r.db.Where("active = ? AND expires_at <= ?", true, now).Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve expired shares: %w", err)
	}
	return shares, nil
}
