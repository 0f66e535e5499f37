package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// RedirectService drives the consumer-facing flow behind /shared/:token.
// It is a small state machine: Resolving -> Redirecting on success, or one of
// a fixed set of terminal error states. No retries inside the flow; a failed
// resolution is final for the request and the client may simply re-request.
type RedirectService struct {
	shareService *ShareService
	clickService *ClickService
	resourceRepo repository.ResourceRepository
}

// NewRedirectService creates and returns a new instance of RedirectService.
func NewRedirectService(shareService *ShareService, clickService *ClickService,
	resourceRepo repository.ResourceRepository) *RedirectService {
	return &RedirectService{
		shareService: shareService,
		clickService: clickService,
		resourceRepo: resourceRepo,
	}
}

// Resolve runs the redirect flow for a share token:
//  1. resolve the token (absent/expired/inactive -> ErrShareNotFound)
//  2. reuse the caller's session id, or mint an ephemeral one
//  3. record the click (ErrThrottled when the ceiling is hit)
//  4. resolve the bound job/course and its external link
//  5. record the conversion for the same session - only after the click and
//     its recompute committed, so a conversion is always attributed to a
//     durably recorded click
//  6. hand back the external link
//
// Returns the target URL and the session id used (so the transport layer can
// persist it client-side), or one of the taxonomy errors.
func (s *RedirectService) Resolve(token, sessionID, userAgent, clientIP string) (string, string, error) {
	share, err := s.shareService.GetShareByToken(token)
	if err != nil {
		return "", "", err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := s.clickService.RecordClick(token, sessionID, userAgent, clientIP); err != nil {
		return "", "", err
	}

	targetURL, err := s.resolveLink(share)
	if err != nil {
		return "", "", err
	}

	// Optimistic conversion: the visitor is being handed the external link.
	if err := s.clickService.RecordConversion(token, sessionID); err != nil {
		return "", "", err
	}

	return targetURL, sessionID, nil
}

// resolveLink looks up the resource bound to the share and returns its
// external link, or ErrResourceNotFound when it no longer resolves.
func (s *RedirectService) resolveLink(share *models.ShareToken) (string, error) {
	switch share.ResourceType {
	case models.ResourceTypeJob:
		job, err := s.resourceRepo.GetJobByID(share.ResourceID)
		if err != nil {
			return "", notFoundOr(err)
		}
		if link, ok := job.ExternalLink(); ok {
			return link, nil
		}
	case models.ResourceTypeCourse:
		course, err := s.resourceRepo.GetCourseByID(share.ResourceID)
		if err != nil {
			return "", notFoundOr(err)
		}
		if link, ok := course.ExternalLink(); ok {
			return link, nil
		}
	}
	return "", customerrors.ErrResourceNotFound
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerrors.ErrResourceNotFound
	}
	return err
}
