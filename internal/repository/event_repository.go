package repository

import (
	"fmt"

	"github.com/axellelanca/sharetracker/internal/models"
	"gorm.io/gorm"
)

// EventRepository est une interface qui définit les méthodes d'accès aux
// événements de suivi utilisateur.
type EventRepository interface {
	CreateEvent(event *models.UserEvent) error
}

// GormEventRepository est l'implémentation de EventRepository utilisant GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository crée et retourne une nouvelle instance de GormEventRepository.
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// CreateEvent insère un nouvel événement de suivi dans la base de données.
func (r *GormEventRepository) CreateEvent(event *models.UserEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create user event: %w", err)
	}
	return nil
}
