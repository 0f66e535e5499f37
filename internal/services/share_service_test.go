package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
)

func TestCreateShare_IssuesTokenAndInitialAnalytics(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")

	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "+5511999999999")
	require.NoError(t, err)

	assert.Len(t, share.Token, 32)
	assert.True(t, share.Active)
	assert.Equal(t, "job-1", share.ResourceID)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), share.ExpiresAt, time.Minute)

	// The analytics record is created eagerly with one share and zero activity
	record, err := env.analytics.GetByToken(share.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, record.TotalShares)
	assert.Equal(t, 0, record.TotalClicks)
	assert.Equal(t, 0, record.TotalConversions)
	assert.Equal(t, "0", record.ConversionRate)
}

func TestCreateShare_UniqueTokensPerShareAction(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")

	first, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)
	second, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token, "each share action gets its own token")
}

func TestCreateShare_RejectsUnknownResource(t *testing.T) {
	env := newTestEnv(t, generousLimiter())

	_, err := env.shares.CreateShare(models.ResourceTypeJob, "missing", "")
	assert.ErrorIs(t, err, customerrors.ErrResourceNotFound)

	_, err = env.shares.CreateShare("playlist", "job-1", "")
	assert.ErrorIs(t, err, customerrors.ErrInvalidResourceType)
}

func TestGetShareByToken_ExpiryWithoutDeactivation(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedCourse(t, "course-1", "https://example.com/curso")

	share, err := env.shares.CreateShare(models.ResourceTypeCourse, "course-1", "")
	require.NoError(t, err)

	// Move the service clock past the expiry horizon; Active stays true in
	// the database, the token must still stop resolving.
	env.shares.WithClock(func() time.Time { return time.Now().AddDate(0, 0, 31) })

	_, err = env.shares.GetShareByToken(share.Token)
	assert.ErrorIs(t, err, customerrors.ErrShareNotFound)
}

func TestGetShareByToken_InactiveToken(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")

	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	require.NoError(t, env.shareRepo.DeactivateShare(share.Token))

	_, err = env.shares.GetShareByToken(share.Token)
	assert.ErrorIs(t, err, customerrors.ErrShareNotFound)
}

func TestGetShareByToken_UnknownToken(t *testing.T) {
	env := newTestEnv(t, generousLimiter())

	_, err := env.shares.GetShareByToken("nope")
	assert.ErrorIs(t, err, customerrors.ErrShareNotFound)
}
