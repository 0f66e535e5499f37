package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/sharetracker/internal/models"
)

func TestConversionRate(t *testing.T) {
	// 0 clicks is the special "0" (no trailing decimals)
	assert.Equal(t, "0", ConversionRate(0, 0))

	assert.Equal(t, "30.00", ConversionRate(10, 3))
	assert.Equal(t, "100.00", ConversionRate(5, 5))
	assert.Equal(t, "0.00", ConversionRate(7, 0))
	assert.Equal(t, "33.33", ConversionRate(3, 1))
}

func TestRecompute_MatchesClickLog(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	// 10 clicks, 3 of them converted (distinct sessions so each conversion
	// lands on its own click)
	for i := 0; i < 10; i++ {
		session := string(rune('a' + i))
		require.NoError(t, env.clicks.RecordClick(share.Token, session, "", "10.0.0.1"))
	}
	for _, session := range []string{"a", "b", "c"} {
		require.NoError(t, env.clicks.RecordConversion(share.Token, session))
	}

	record, err := env.analytics.Recompute(share.Token)
	require.NoError(t, err)

	// The rollup equals a straight recount of the event log
	clicks, err := env.clickRepo.CountClicksByToken(share.Token)
	require.NoError(t, err)
	conversions, err := env.clickRepo.CountConversionsByToken(share.Token)
	require.NoError(t, err)

	assert.Equal(t, clicks, record.TotalClicks)
	assert.Equal(t, conversions, record.TotalConversions)
	assert.Equal(t, 10, record.TotalClicks)
	assert.Equal(t, 3, record.TotalConversions)
	assert.Equal(t, "30.00", record.ConversionRate)

	// Recompute is a full recount: running it again converges to the same row
	again, err := env.analytics.Recompute(share.Token)
	require.NoError(t, err)
	assert.Equal(t, record.TotalClicks, again.TotalClicks)
	assert.Equal(t, record.TotalConversions, again.TotalConversions)
	assert.Equal(t, record.ConversionRate, again.ConversionRate)
}

func TestRecompute_RebuildsMissingRollup(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	// Simulate the issuer dying between the token insert and the rollup
	// insert: the token resolves but no analytics row exists.
	require.NoError(t, env.db.Where("share_token = ?", share.Token).
		Delete(&models.ShareAnalytics{}).Error)

	// The next click must recreate the rollup instead of failing every time.
	require.NoError(t, env.clicks.RecordClick(share.Token, "s1", "", "10.0.0.1"))

	record, err := env.analytics.GetByToken(share.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ResourceTypeJob, record.ResourceType)
	assert.Equal(t, "job-1", record.ResourceID)
	assert.Equal(t, 1, record.TotalShares)
	assert.Equal(t, 1, record.TotalClicks)
	assert.Equal(t, 0, record.TotalConversions)
	assert.Equal(t, "0.00", record.ConversionRate)
}

func TestGetForResource_AllTokensOfResource(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")
	env.seedJob(t, "job-2", "https://example.com/outra")

	s1, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)
	s2, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)
	_, err = env.shares.CreateShare(models.ResourceTypeJob, "job-2", "")
	require.NoError(t, err)

	records, err := env.analytics.GetForResource(models.ResourceTypeJob, "job-1")
	require.NoError(t, err)

	require.Len(t, records, 2)
	tokens := []string{records[0].ShareToken, records[1].ShareToken}
	assert.ElementsMatch(t, []string{s1.Token, s2.Token}, tokens)
}

func TestGetTopResources_RankedByConversionEvents(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-a", "https://example.com/a")
	env.seedJob(t, "job-b", "https://example.com/b")
	env.seedJob(t, "job-c", "https://example.com/c")

	// job-b gets two conversions through two different tokens, job-a one,
	// job-c clicks but no conversion
	convert := func(resourceID, session string) {
		t.Helper()
		share, err := env.shares.CreateShare(models.ResourceTypeJob, resourceID, "")
		require.NoError(t, err)
		require.NoError(t, env.clicks.RecordClick(share.Token, session, "", "10.0.0.1"))
		require.NoError(t, env.clicks.RecordConversion(share.Token, session))
	}
	convert("job-b", "s1")
	convert("job-b", "s2")
	convert("job-a", "s3")

	shareC, err := env.shares.CreateShare(models.ResourceTypeJob, "job-c", "")
	require.NoError(t, err)
	require.NoError(t, env.clicks.RecordClick(shareC.Token, "s4", "", "10.0.0.1"))

	top, err := env.analytics.GetTopResources(models.ResourceTypeJob, 30, 10)
	require.NoError(t, err)

	require.Len(t, top, 2, "resources without conversions are not ranked")
	assert.Equal(t, "job-b", top[0].ResourceID)
	assert.Equal(t, 2, top[0].ConversionCount)
	assert.Equal(t, "job-a", top[1].ResourceID)
	assert.Equal(t, 1, top[1].ConversionCount)
}

func TestGetTopResources_TiesBrokenByResourceID(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-z", "https://example.com/z")
	env.seedJob(t, "job-a", "https://example.com/a")

	for i, id := range []string{"job-z", "job-a"} {
		share, err := env.shares.CreateShare(models.ResourceTypeJob, id, "")
		require.NoError(t, err)
		session := string(rune('a' + i))
		require.NoError(t, env.clicks.RecordClick(share.Token, session, "", "10.0.0.1"))
		require.NoError(t, env.clicks.RecordConversion(share.Token, session))
	}

	top, err := env.analytics.GetTopResources(models.ResourceTypeJob, 30, 10)
	require.NoError(t, err)

	// Equal conversion counts: deterministic order by resource id ascending
	require.Len(t, top, 2)
	assert.Equal(t, "job-a", top[0].ResourceID)
	assert.Equal(t, "job-z", top[1].ResourceID)
}

func TestGetTopResources_WindowsOnConversionTime(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	env.seedJob(t, "job-1", "https://example.com/vaga")
	share, err := env.shares.CreateShare(models.ResourceTypeJob, "job-1", "")
	require.NoError(t, err)

	// The click happened well outside the 30-day ranking window...
	require.NoError(t, env.clickRepo.CreateClick(&models.ShareClick{
		ShareToken: share.Token,
		SessionID:  "s1",
		ClickedAt:  time.Now().AddDate(0, 0, -60),
	}))

	// ...but the conversion is attributed now, inside it
	require.NoError(t, env.clicks.RecordConversion(share.Token, "s1"))

	top, err := env.analytics.GetTopResources(models.ResourceTypeJob, 30, 10)
	require.NoError(t, err)
	require.Len(t, top, 1, "a fresh conversion on an old click counts in the current window")
	assert.Equal(t, "job-1", top[0].ResourceID)
	assert.Equal(t, 1, top[0].ConversionCount)
}

func TestGetTopResources_LimitApplies(t *testing.T) {
	env := newTestEnv(t, generousLimiter())
	for _, id := range []string{"j1", "j2", "j3"} {
		env.seedJob(t, id, "https://example.com/"+id)
		share, err := env.shares.CreateShare(models.ResourceTypeJob, id, "")
		require.NoError(t, err)
		require.NoError(t, env.clicks.RecordClick(share.Token, "s-"+id, "", "10.0.0.1"))
		require.NoError(t, env.clicks.RecordConversion(share.Token, "s-"+id))
	}

	top, err := env.analytics.GetTopResources(models.ResourceTypeJob, 30, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
