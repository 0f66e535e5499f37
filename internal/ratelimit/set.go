package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Set groups the named limiter instances of the application, one per action
// class. Each is independent, with its own ceiling and window.
type Set struct {
	Global       Admitter // Limite générale par IP
	CreateShare  Admitter // Limite de création de liens de partage
	CreateJob    Admitter // Limite de création de vagas
	CreateCourse Admitter // Limite de création de cursos
	Click        Admitter // Limite de cliques em links
}

// LimitSpec is the ceiling/window pair used to build one limiter of a Set.
type LimitSpec struct {
	Ceiling int
	Window  time.Duration
}

// NewMemorySet builds an in-memory limiter per action class.
func NewMemorySet(global, createShare, createJob, createCourse, click LimitSpec) *Set {
	return &Set{
		Global:       New(global.Ceiling, global.Window),
		CreateShare:  New(createShare.Ceiling, createShare.Window),
		CreateJob:    New(createJob.Ceiling, createJob.Window),
		CreateCourse: New(createCourse.Ceiling, createCourse.Window),
		Click:        New(click.Ceiling, click.Window),
	}
}

// NewRedisSet builds a Redis-backed limiter per action class, sharing
// counters between process instances.
func NewRedisSet(rdb *redis.Client, global, createShare, createJob, createCourse, click LimitSpec) *Set {
	return &Set{
		Global:       NewRedisLimiter(rdb, "global", global.Ceiling, global.Window),
		CreateShare:  NewRedisLimiter(rdb, "create-share", createShare.Ceiling, createShare.Window),
		CreateJob:    NewRedisLimiter(rdb, "create-job", createJob.Ceiling, createJob.Window),
		CreateCourse: NewRedisLimiter(rdb, "create-course", createCourse.Ceiling, createCourse.Window),
		Click:        NewRedisLimiter(rdb, "click", click.Ceiling, click.Window),
	}
}
