package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// ResourceService manages the minimal job and course records that share
// tokens resolve against. The full admin CRUD lives in the listing site;
// here we only need enough to validate and redirect.
type ResourceService struct {
	resourceRepo repository.ResourceRepository
}

// NewResourceService creates and returns a new instance of ResourceService.
func NewResourceService(resourceRepo repository.ResourceRepository) *ResourceService {
	return &ResourceService{resourceRepo: resourceRepo}
}

// CreateJob registers a job offer and assigns it a UUID.
func (s *ResourceService) CreateJob(title, company, link string) (*models.Job, error) {
	job := &models.Job{
		ID:      uuid.NewString(),
		Title:   title,
		Company: company,
		Link:    link,
		Status:  models.JobStatusActive,
	}
	if err := s.resourceRepo.CreateJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob retrieves a job by id, mapping missing rows to ErrResourceNotFound.
func (s *ResourceService) GetJob(id string) (*models.Job, error) {
	job, err := s.resourceRepo.GetJobByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrResourceNotFound
		}
		return nil, err
	}
	return job, nil
}

// CreateCourse registers a course and assigns it a UUID.
func (s *ResourceService) CreateCourse(title, institution, link string) (*models.Course, error) {
	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       title,
		Institution: institution,
		Link:        link,
		Status:      models.CourseStatusActive,
	}
	if err := s.resourceRepo.CreateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourse retrieves a course by id, mapping missing rows to ErrResourceNotFound.
func (s *ResourceService) GetCourse(id string) (*models.Course, error) {
	course, err := s.resourceRepo.GetCourseByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrResourceNotFound
		}
		return nil, err
	}
	return course, nil
}
