package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
)

func TestResolve_RedirectsAndRecordsClickPlusConversion(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	target, sessionID, err := env.redirects.Resolve(share.Token, "", "Mozilla/5.0", "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/vaga", target)
	assert.NotEmpty(t, sessionID, "an ephemeral session id is minted when the caller has none")

	// One click, already marked converted (optimistic conversion on handoff)
	record, err := env.analytics.GetByToken(share.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, record.TotalClicks)
	assert.Equal(t, 1, record.TotalConversions)
	assert.Equal(t, "100.00", record.ConversionRate)
}

func TestResolve_ReusesCallerSession(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedCourse(t, "course-1", "https://example.com/curso")
	share, err := env.shares.CreateShare(models.ResourceTypeCourse, "course-1", "")
	require.NoError(t, err)

	_, sessionID, err := env.redirects.Resolve(share.Token, "existing-session", "", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "existing-session", sessionID)
}

func TestResolve_ExpiredOrInvalidToken(t *testing.T) {
	env := newTestEnv(t, generousLimiter())

	_, _, err := env.redirects.Resolve("ghost", "", "", "10.0.0.1")
	assert.ErrorIs(t, err, customerrors.ErrShareNotFound)

	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)
	env.shares.WithClock(func() time.Time { return time.Now().AddDate(0, 0, 31) })

	_, _, err = env.redirects.Resolve(share.Token, "", "", "10.0.0.1")
	assert.ErrorIs(t, err, customerrors.ErrShareNotFound)
}

func TestResolve_ResourceNoLongerResolvable(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	job := env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	// The job goes inactive after the share was issued
	job.Status = models.JobStatusInactive
	require.NoError(t, env.db.Save(job).Error)

	_, _, err = env.redirects.Resolve(share.Token, "", "", "10.0.0.1")
	assert.ErrorIs(t, err, customerrors.ErrResourceNotFound)

	// The click was recorded before resolution failed; no conversion though
	record, aerr := env.analytics.GetByToken(share.Token)
	require.NoError(t, aerr)
	assert.Equal(t, 1, record.TotalClicks)
	assert.Equal(t, 0, record.TotalConversions)
}

func TestResolve_Throttled(t *testing.T) {
	env := newTestEnv(t, ratelimit.New(1, time.Minute))
	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	_, _, err = env.redirects.Resolve(share.Token, "", "", "10.0.0.1")
	require.NoError(t, err)

	_, _, err = env.redirects.Resolve(share.Token, "", "", "10.0.0.1")
	assert.ErrorIs(t, err, customerrors.ErrThrottled)
}
