package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gorm.io/gorm"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// charset defines the character set used for generating share tokens.
// Uses alphanumeric characters (both cases) for a total of 62 possible characters.
// With 32-character tokens that is 62^32 combinations: collisions are
// negligible and brute-forcing a live token from outside is infeasible.
// The token is an attribution handle, not a security credential.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShareService provides business logic for issuing and resolving share tokens.
// It acts as an intermediary between the HTTP handlers and the data repositories.
type ShareService struct {
	shareRepo     repository.ShareRepository
	analyticsRepo repository.AnalyticsRepository
	resourceRepo  repository.ResourceRepository
	tokenLength   int
	expiry        time.Duration
	now           func() time.Time // injectable clock for expiry tests
}

// NewShareService creates and returns a new instance of ShareService.
// tokenLength is the length of generated tokens, expiryDays the horizon after
// which issued tokens stop resolving.
func NewShareService(shareRepo repository.ShareRepository, analyticsRepo repository.AnalyticsRepository,
	resourceRepo repository.ResourceRepository, tokenLength, expiryDays int) *ShareService {
	return &ShareService{
		shareRepo:     shareRepo,
		analyticsRepo: analyticsRepo,
		resourceRepo:  resourceRepo,
		tokenLength:   tokenLength,
		expiry:        time.Duration(expiryDays) * 24 * time.Hour,
		now:           time.Now,
	}
}

// WithClock replaces the service's time source. Used by tests to simulate
// token expiry without waiting 30 days.
func (s *ShareService) WithClock(now func() time.Time) *ShareService {
	s.now = now
	return s
}

// GenerateToken generates a random token of the given length over the
// alphanumeric charset, using crypto/rand.
func (s *ShareService) GenerateToken(length int) (string, error) {
	token := make([]byte, length)
	for i := range token {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		token[i] = charset[num.Int64()]
	}
	return string(token), nil
}

// CreateShare issues a new share token bound to a (resourceType, resourceID)
// pair, with collision detection and retry logic, and eagerly creates the
// initial analytics record for it (TotalShares=1, everything else zero).
// Parameters:
//   - resourceType: "job" or "course"
//   - resourceID: identifier of the resource being shared
//   - userPhone: optional phone of the user who shared (may be empty)
//
// Returns:
//   - *models.ShareToken: the persisted token
//   - error: ErrInvalidResourceType / ErrResourceNotFound on validation
//     failures (checked here, consistently, before any state mutation)
func (s *ShareService) CreateShare(resourceType, resourceID, userPhone string) (*models.ShareToken, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, customerrors.ErrInvalidResourceType
	}

	// Validate that the resource exists before issuing anything
	if err := s.resolveResource(resourceType, resourceID); err != nil {
		return nil, err
	}

	var token string
	maxRetries := 5 // Maximum number of attempts to generate a unique token

	// Retry loop to handle token collisions (vanishingly rare at this length)
	for i := 0; i < maxRetries; i++ {
		candidate, err := s.GenerateToken(s.tokenLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate share token: %w", err)
		}

		_, err = s.shareRepo.GetShareByToken(candidate)
		if err != nil {
			// If the error is 'record not found', the token is unique and we can use it
			if errors.Is(err, gorm.ErrRecordNotFound) {
				token = candidate
				break
			}
			return nil, fmt.Errorf("database error checking token uniqueness: %w", err)
		}

		log.Printf("Share token collision detected, retrying generation (%d/%d)...", i+1, maxRetries)
	}

	if token == "" {
		return nil, customerrors.ErrTokenGenerationFailed
	}

	now := s.now()
	share := &models.ShareToken{
		Token:        token,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserPhone:    userPhone,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.expiry),
		Active:       true,
	}

	if err := s.shareRepo.CreateShare(share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	// Créer le rollup analytics initial pour ce token
	analytics := &models.ShareAnalytics{
		ShareToken:       token,
		ResourceType:     resourceType,
		ResourceID:       resourceID,
		TotalShares:      1,
		TotalClicks:      0,
		TotalConversions: 0,
		ConversionRate:   "0",
		LastUpdated:      now,
	}
	if err := s.analyticsRepo.UpsertAnalytics(analytics); err != nil {
		return nil, fmt.Errorf("failed to create initial analytics: %w", err)
	}

	return share, nil
}

// GetShareByToken resolves a share token. Tokens that are absent, inactive or
// past their expiry horizon all resolve to ErrShareNotFound: expiry counts
// even when Active was never explicitly flipped.
func (s *ShareService) GetShareByToken(token string) (*models.ShareToken, error) {
	share, err := s.shareRepo.GetShareByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrShareNotFound
		}
		return nil, err
	}

	if !share.Active || share.Expired(s.now()) {
		return nil, customerrors.ErrShareNotFound
	}

	return share, nil
}

// resolveResource checks that the referenced job or course exists.
func (s *ShareService) resolveResource(resourceType, resourceID string) error {
	var err error
	switch resourceType {
	case models.ResourceTypeJob:
		_, err = s.resourceRepo.GetJobByID(resourceID)
	case models.ResourceTypeCourse:
		_, err = s.resourceRepo.GetCourseByID(resourceID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrResourceNotFound
		}
		return fmt.Errorf("failed to resolve %s %s: %w", resourceType, resourceID, err)
	}
	return nil
}
