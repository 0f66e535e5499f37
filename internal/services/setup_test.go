package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// testEnv bundles the repositories and services wired over one in-memory
// SQLite database, the same way the server command wires them.
type testEnv struct {
	db           *gorm.DB
	shareRepo    repository.ShareRepository
	clickRepo    repository.ClickRepository
	resourceRepo repository.ResourceRepository
	shares       *ShareService
	analytics    *AnalyticsService
	clicks       *ClickService
	redirects    *RedirectService
}

// newTestEnv opens an in-memory database, migrates the models and wires the
// service graph. clickLimiter bounds click admission; pass a generous one
// when throttling is not under test.
func newTestEnv(t *testing.T, clickLimiter ratelimit.Admitter) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ShareToken{},
		&models.ShareClick{},
		&models.ShareAnalytics{},
		&models.Job{},
		&models.Course{},
		&models.UserEvent{},
	))

	shareRepo := repository.NewShareRepository(db)
	clickRepo := repository.NewClickRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	shares := NewShareService(shareRepo, analyticsRepo, resourceRepo, 32, 30)
	analytics := NewAnalyticsService(clickRepo, analyticsRepo, shareRepo)
	clicks := NewClickService(shares, clickRepo, analytics, clickLimiter)
	redirects := NewRedirectService(shares, clicks, resourceRepo)

	return &testEnv{
		db:           db,
		shareRepo:    shareRepo,
		clickRepo:    clickRepo,
		resourceRepo: resourceRepo,
		shares:       shares,
		analytics:    analytics,
		clicks:       clicks,
		redirects:    redirects,
	}
}

// generousLimiter returns a limiter that will not interfere with the test.
func generousLimiter() ratelimit.Admitter {
	return ratelimit.New(10000, time.Minute)
}

// seedJob inserts a job with a fixed id so tests control the ranking order.
func (e *testEnv) seedJob(t *testing.T, id, link string) *models.Job {
	t.Helper()
	job := &models.Job{ID: id, Title: "Vaga " + id, Company: "ACME", Link: link, Status: models.JobStatusActive}
	require.NoError(t, e.resourceRepo.CreateJob(job))
	return job
}

// seedCourse inserts a course with a fixed id.
func (e *testEnv) seedCourse(t *testing.T, id, link string) *models.Course {
	t.Helper()
	course := &models.Course{ID: id, Title: "Curso " + id, Institution: "Escola", Link: link, Status: models.CourseStatusActive}
	require.NoError(t, e.resourceRepo.CreateCourse(course))
	return course
}
