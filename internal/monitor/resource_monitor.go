package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// ResourceMonitor periodically checks the external links of jobs and courses
// for accessibility, and deactivates share tokens whose expiry horizon has
// passed. It maintains a state map to notify when a link's status changes.
type ResourceMonitor struct {
	resourceRepo repository.ResourceRepository // Repository to fetch jobs and courses
	shareRepo    repository.ShareRepository    // Repository to sweep expired share tokens
	interval     time.Duration                 // How often to run a verification pass
	knownStates  map[string]bool               // Cache of previous link states (resource ID -> accessible)
	mu           sync.Mutex                    // Protects concurrent access to knownStates map
	httpClient   *http.Client                  // HTTP client for making requests
}

// NewResourceMonitor creates and returns a new instance of ResourceMonitor.
// interval parameter determines how frequently the checks run.
func NewResourceMonitor(resourceRepo repository.ResourceRepository, shareRepo repository.ShareRepository, interval time.Duration) *ResourceMonitor {
	return &ResourceMonitor{
		resourceRepo: resourceRepo,
		shareRepo:    shareRepo,
		interval:     interval,
		knownStates:  make(map[string]bool),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the periodic monitoring loop.
// This is a blocking function; run it in a goroutine and cancel the context
// to stop it.
func (m *ResourceMonitor) Start(ctx context.Context) {
	log.Printf("[MONITOR] Starting resource monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Execute an immediate pass on startup before waiting for the first tick
	m.runPass()

	for {
		select {
		case <-ctx.Done():
			log.Println("[MONITOR] Resource monitor stopped.")
			return
		case <-ticker.C:
			m.runPass()
		}
	}
}

// runPass executes one verification pass: expired-share sweep, then link checks.
func (m *ResourceMonitor) runPass() {
	m.sweepExpiredShares()
	m.checkResourceLinks()
}

// sweepExpiredShares flips Active to false on share tokens past their expiry.
// Resolution already rejects expired tokens by timestamp; the sweep keeps the
// stored state in line with what resolution reports.
func (m *ResourceMonitor) sweepExpiredShares() {
	shares, err := m.shareRepo.GetExpiredActiveShares(time.Now())
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving expired shares: %v", err)
		return
	}

	for _, share := range shares {
		if err := m.shareRepo.DeactivateShare(share.Token); err != nil {
			log.Printf("[MONITOR] ERROR deactivating expired share %s: %v", share.Token, err)
			continue
		}
		log.Printf("[MONITOR] Share token %s expired on %s, deactivated",
			share.Token, share.ExpiresAt.Format("2006-01-02"))
	}
}

// checkResourceLinks performs a status check on all job and course links.
// It compares current state with previous state and logs any changes.
func (m *ResourceMonitor) checkResourceLinks() {
	log.Println("[MONITOR] Starting resource link verification...")

	jobs, err := m.resourceRepo.GetAllJobs()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving jobs for monitoring: %v", err)
	} else {
		for _, job := range jobs {
			m.checkOne("job:"+job.ID, job.Title, job.Link)
		}
	}

	courses, err := m.resourceRepo.GetAllCourses()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving courses for monitoring: %v", err)
	} else {
		for _, course := range courses {
			m.checkOne("course:"+course.ID, course.Title, course.Link)
		}
	}

	log.Println("[MONITOR] Resource link verification completed.")
}

// checkOne tests a single external link and records state transitions.
func (m *ResourceMonitor) checkOne(key, title, link string) {
	currentState := m.isURLAccessible(link)

	// Thread-safe access to the state map
	m.mu.Lock()
	previousState, exists := m.knownStates[key]
	m.knownStates[key] = currentState
	m.mu.Unlock()

	// First observation of this resource: just log the initial state
	if !exists {
		log.Printf("[MONITOR] Initial state for %s (%s): %s", key, title, formatState(currentState))
		return
	}

	if currentState != previousState {
		log.Printf("[NOTIFICATION] Resource %s (%s) changed from %s to %s!",
			key, title, formatState(previousState), formatState(currentState))
	}
}

// isURLAccessible performs an HTTP HEAD request to check if a URL is accessible.
// Returns true if the URL responds with a successful HTTP status code (2xx or 3xx).
func (m *ResourceMonitor) isURLAccessible(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// HEAD is faster than GET since we don't need the response body
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		log.Printf("[MONITOR] %v", customerrors.ErrURLCheckFailed{URL: url, Reason: err.Error()})
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Printf("[MONITOR] %v", customerrors.ErrURLCheckFailed{URL: url, Reason: err.Error()})
		return false
	}
	defer resp.Body.Close()

	// 4xx (client error) and 5xx (server error) are considered inaccessible
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// formatState is a utility function to make the state more readable in logs.
func formatState(accessible bool) string {
	if accessible {
		return "ACCESSIBLE"
	}
	return "INACCESSIBLE"
}
