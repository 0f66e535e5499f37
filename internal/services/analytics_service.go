// Package services contains the business logic layer for the share tracking engine
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// AnalyticsService maintains the materialized rollup of clicks and
// conversions per share token, and exposes the read paths over it.
type AnalyticsService struct {
	clickRepo     repository.ClickRepository     // Source of truth: the append-only click log
	analyticsRepo repository.AnalyticsRepository // Destination of the recomputed rollups
	shareRepo     repository.ShareRepository     // Identity fields when a rollup must be rebuilt
}

// NewAnalyticsService creates and returns a new instance of AnalyticsService.
func NewAnalyticsService(clickRepo repository.ClickRepository, analyticsRepo repository.AnalyticsRepository,
	shareRepo repository.ShareRepository) *AnalyticsService {
	return &AnalyticsService{
		clickRepo:     clickRepo,
		analyticsRepo: analyticsRepo,
		shareRepo:     shareRepo,
	}
}

// ConversionRate formats the conversion percentage the way the analytics
// screens expect it: two decimals ("30.00"), or "0" when there were no clicks.
func ConversionRate(clicks, conversions int) string {
	if clicks <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(conversions)/float64(clicks)*100)
}

// Recompute fully recounts the click log for a token and upserts the rollup.
// A full recount (instead of patching counters) self-heals from any missed or
// out-of-order increment; the O(n) scan is acceptable because n is bounded by
// the fan-out of one shared link.
// Parameters:
//   - token: the share token to recompute
//
// Returns:
//   - *models.ShareAnalytics: the recomputed record as written
//   - error: any error from the click log or the upsert
func (s *AnalyticsService) Recompute(token string) (*models.ShareAnalytics, error) {
	clicks, err := s.clickRepo.CountClicksByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute analytics for %s: %w", token, err)
	}

	conversions, err := s.clickRepo.CountConversionsByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute analytics for %s: %w", token, err)
	}

	// Keep the identity fields of the existing row. The issuer creates the
	// rollup eagerly, but the row can be missing when the issuer failed
	// between the token insert and the rollup insert; rebuild it from the
	// token so the upsert inserts it and the aggregate heals.
	record, err := s.analyticsRepo.GetAnalyticsByToken(token)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load analytics for %s: %w", token, err)
		}
		share, serr := s.shareRepo.GetShareByToken(token)
		if serr != nil {
			return nil, fmt.Errorf("failed to rebuild analytics for %s: %w", token, serr)
		}
		record = &models.ShareAnalytics{
			ShareToken:   token,
			ResourceType: share.ResourceType,
			ResourceID:   share.ResourceID,
			TotalShares:  1,
		}
	}

	record.TotalClicks = clicks
	record.TotalConversions = conversions
	record.ConversionRate = ConversionRate(clicks, conversions)
	record.LastUpdated = time.Now()

	if err := s.analyticsRepo.UpsertAnalytics(record); err != nil {
		return nil, err
	}

	return record, nil
}

// GetByToken returns the rollup for one share token.
func (s *AnalyticsService) GetByToken(token string) (*models.ShareAnalytics, error) {
	return s.analyticsRepo.GetAnalyticsByToken(token)
}

// GetForResource returns the rollups of every token bound to a resource.
// Callers aggregate these when they need a per-resource total.
func (s *AnalyticsService) GetForResource(resourceType, resourceID string) ([]models.ShareAnalytics, error) {
	return s.analyticsRepo.GetAnalyticsForResource(resourceType, resourceID)
}

// GetTopResources ranks resources of one type by conversion events recorded
// within the last daysAgo days. The ranking is over raw conversion events
// grouped by resource, not over the per-token rollups, because one resource
// may have many tokens.
func (s *AnalyticsService) GetTopResources(resourceType string, daysAgo, limit int) ([]models.TopResource, error) {
	if daysAgo <= 0 {
		daysAgo = 30
	}
	if limit <= 0 {
		limit = 10
	}
	since := time.Now().AddDate(0, 0, -daysAgo)
	return s.clickRepo.TopResourcesByConversions(resourceType, since, limit)
}
