package services

import (
	"fmt"
	"log"
	"time"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// ClickService records click events against share tokens and attributes
// conversions back to them. Every mutation of the click log triggers a
// synchronous analytics recompute, so readers never observe a rollup more
// stale than one recompute pass.
type ClickService struct {
	shareService *ShareService
	clickRepo    repository.ClickRepository
	analytics    *AnalyticsService
	clickLimiter ratelimit.Admitter // Bounds abusive click replay per client
}

// NewClickService creates and returns a new instance of ClickService.
func NewClickService(shareService *ShareService, clickRepo repository.ClickRepository,
	analytics *AnalyticsService, clickLimiter ratelimit.Admitter) *ClickService {
	return &ClickService{
		shareService: shareService,
		clickRepo:    clickRepo,
		analytics:    analytics,
		clickLimiter: clickLimiter,
	}
}

// RecordClick appends a click event for a token and recomputes its rollup.
// Multiple clicks from the same session are all counted: the click count is
// not deduplicated, only conversions are idempotent.
// Parameters:
//   - token: the share token the click is attributed to
//   - sessionID, userAgent, clientIP: request context (each may be empty)
//
// Returns:
//   - error: ErrShareNotFound if the token doesn't resolve, ErrThrottled if
//     the rate ceiling for this client is exceeded (checked before any write)
func (s *ClickService) RecordClick(token, sessionID, userAgent, clientIP string) error {
	// Token must resolve before anything is written
	if _, err := s.shareService.GetShareByToken(token); err != nil {
		return err
	}

	// Admission check, keyed by the client address when we have one. Denial
	// is final for this request; the caller decides the response.
	if !s.clickLimiter.Admit(clickLimitKey(clientIP, sessionID, token)) {
		return customerrors.ErrThrottled
	}

	click := &models.ShareClick{
		ShareToken: token,
		SessionID:  sessionID,
		UserAgent:  userAgent,
		ClientIP:   clientIP,
		ClickedAt:  time.Now(),
		Converted:  false,
	}

	if err := s.clickRepo.CreateClick(click); err != nil {
		return customerrors.ErrClickRecordingFailed{Token: token, Reason: err.Error()}
	}

	// Recompute synchronously. If this fails the click row still exists and
	// the rollup stays stale until the next successful recompute; that
	// inconsistency window self-heals, so we surface the error without
	// retrying (a retry here could double-record on ambiguous failures).
	if _, err := s.analytics.Recompute(token); err != nil {
		return fmt.Errorf("click recorded but recompute failed for %s: %w", token, err)
	}

	return nil
}

// RecordConversion flips the most recent unconverted click of the token (and
// session, when given) to converted, then recomputes the rollup. When no such
// click exists - conversion before any click, or a replayed conversion - this
// is a no-op: no event is created and nothing is double counted.
//
// The signal means "the visitor's browser proceeded to the external
// resource": an optimistic conversion with no server-side confirmation that
// the external page loaded. Known precision limitation, kept as documented.
func (s *ClickService) RecordConversion(token, sessionID string) error {
	if _, err := s.shareService.GetShareByToken(token); err != nil {
		return err
	}

	click, err := s.clickRepo.GetLatestUnconverted(token, sessionID)
	if err != nil {
		return err
	}
	if click == nil {
		log.Printf("No unconverted click for token %s (session %q), conversion ignored", token, sessionID)
		return nil
	}

	if err := s.clickRepo.MarkConverted(click.ID); err != nil {
		return err
	}

	if _, err := s.analytics.Recompute(token); err != nil {
		return fmt.Errorf("conversion recorded but recompute failed for %s: %w", token, err)
	}

	return nil
}

// clickLimitKey picks the admission key for a click: client address when
// known, else the session, else the token itself as a last resort.
func clickLimitKey(clientIP, sessionID, token string) string {
	switch {
	case clientIP != "":
		return ratelimit.Key("ip", clientIP)
	case sessionID != "":
		return ratelimit.Key("session", sessionID)
	default:
		return ratelimit.Key("token", token)
	}
}
