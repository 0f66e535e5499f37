package workers

import (
	"log"

	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
)

// StartEventWorkers launches a pool of worker goroutines to persist tracking
// events asynchronously. The worker pool pattern keeps high-volume event
// recording off the request path: handlers enqueue and return immediately.
// Parameters:
//   - workerCount: number of concurrent workers to spawn
//   - eventsChan: channel that receives tracking events to be processed
//   - eventRepo: repository interface for persisting events to database
func StartEventWorkers(workerCount int, eventsChan <-chan models.TrackingEvent, eventRepo repository.EventRepository) {
	log.Printf("Starting %d tracking event worker(s)...", workerCount)

	for i := 0; i < workerCount; i++ {
		go eventWorker(eventsChan, eventRepo)
	}
}

// eventWorker is the function executed by each worker goroutine.
// It continuously listens for tracking events on the channel and persists
// them. When the channel is closed, the worker exits gracefully.
func eventWorker(eventsChan <-chan models.TrackingEvent, eventRepo repository.EventRepository) {
	for event := range eventsChan {
		userEvent := &models.UserEvent{
			EventType:    event.EventType,
			ResourceType: event.ResourceType,
			ResourceID:   event.ResourceID,
			SessionID:    event.SessionID,
			Referrer:     event.Referrer,
			UserAgent:    event.UserAgent,
			IPAddress:    event.IPAddress,
			Timestamp:    event.Timestamp,
		}

		// Log error but don't crash - we want to keep processing other events
		if err := eventRepo.CreateEvent(userEvent); err != nil {
			log.Printf("ERROR: Failed to save %s event for %s %s: %v",
				event.EventType, event.ResourceType, event.ResourceID, err)
		}
	}
	// Worker exits when channel is closed - this happens during shutdown
}
