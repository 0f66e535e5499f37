package repository

import (
	"fmt"

	"github.com/axellelanca/sharetracker/internal/models"
	"gorm.io/gorm"
)

// ResourceRepository est une interface qui définit les méthodes d'accès aux
// vagas et cursos référencées par les tokens de partage.
type ResourceRepository interface {
	CreateJob(job *models.Job) error
	GetJobByID(id string) (*models.Job, error)
	GetAllJobs() ([]models.Job, error)
	CreateCourse(course *models.Course) error
	GetCourseByID(id string) (*models.Course, error)
	GetAllCourses() ([]models.Course, error)
}

// GormResourceRepository est l'implémentation de ResourceRepository utilisant GORM.
type GormResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository crée et retourne une nouvelle instance de GormResourceRepository.
func NewResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

// CreateJob insère une nouvelle vaga dans la base de données.
func (r *GormResourceRepository) CreateJob(job *models.Job) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJobByID récupère une vaga par son identifiant.
func (r *GormResourceRepository) GetJobByID(id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetAllJobs récupère toutes les vagas de la base de données.
func (r *GormResourceRepository) GetAllJobs() ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all jobs: %w", err)
	}
	return jobs, nil
}

// CreateCourse insère un nouveau curso dans la base de données.
func (r *GormResourceRepository) CreateCourse(course *models.Course) error {
	if err := r.db.Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetCourseByID récupère un curso par son identifiant.
func (r *GormResourceRepository) GetCourseByID(id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// GetAllCourses récupère tous les cursos de la base de données.
func (r *GormResourceRepository) GetAllCourses() ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all courses: %w", err)
	}
	return courses, nil
}
