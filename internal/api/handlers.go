package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/axellelanca/sharetracker/internal/services"
)

// sessionCookie is the cookie carrying the ephemeral session identifier used
// to attribute conversions back to clicks.
const sessionCookie = "share_session"

// TrackingEventsChannel is the global channel used to send tracking events.
// This channel enables asynchronous persistence of view/click/share events
// without blocking the request that reported them.
var TrackingEventsChannel chan models.TrackingEvent

// Handlers groups the services the API depends on.
type Handlers struct {
	Shares    *services.ShareService
	Clicks    *services.ClickService
	Analytics *services.AnalyticsService
	Redirects *services.RedirectService
	Resources *services.ResourceService
	Limiters  *ratelimit.Set
}

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// Parameters:
//   - router: Gin engine instance to configure routes on
//   - h: the service handlers bundle
//   - bufferSize: size of the tracking events channel buffer for async processing
func SetupRoutes(router *gin.Engine, h *Handlers, bufferSize int) {
	// Initialize the global tracking events channel if it hasn't been created yet
	if TrackingEventsChannel == nil {
		TrackingEventsChannel = make(chan models.TrackingEvent, bufferSize)
	}

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	// API Routes Group - all business logic endpoints under /api/v1 prefix,
	// behind the global per-IP admission limiter
	api := router.Group("/api/v1")
	api.Use(RateLimitMiddleware(h.Limiters.Global))
	{
		// Share token issuing and resolution
		api.POST("/shares", CreateShareHandler(h.Shares, h.Limiters.CreateShare))
		api.GET("/shares/:token", GetShareHandler(h.Shares))

		// Click and conversion recording against a token
		api.POST("/shares/:token/clicks", RecordClickHandler(h.Clicks))
		api.POST("/shares/:token/conversions", RecordConversionHandler(h.Clicks))

		// Analytics rollups
		api.GET("/shares/:token/analytics", GetShareAnalyticsHandler(h.Analytics))
		api.GET("/resources/:type/:id/analytics", GetResourceAnalyticsHandler(h.Analytics))
		api.GET("/resources/:type/top", GetTopResourcesHandler(h.Analytics))

		// Minimal job/course records, enough for tokens to resolve against
		api.POST("/jobs", CreateJobHandler(h.Resources, h.Limiters.CreateJob))
		api.GET("/jobs/:id", GetJobHandler(h.Resources))
		api.POST("/courses", CreateCourseHandler(h.Resources, h.Limiters.CreateCourse))
		api.GET("/courses/:id", GetCourseHandler(h.Resources))

		// Fire-and-forget user-event tracking
		api.POST("/events", RecordEventHandler())
	}

	// Redirection Route - the consumer-facing share flow
	// This is where recipients open shared links (e.g., localhost:8080/shared/Ab3...)
	router.GET("/shared/:token", SharedRedirectHandler(h.Redirects))
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateShareRequest represents the JSON request body for issuing a share token.
type CreateShareRequest struct {
	ResourceType string `json:"resource_type" binding:"required"` // "job" or "course"
	ResourceID   string `json:"resource_id" binding:"required"`   // Identifier of the shared resource
	UserPhone    string `json:"user_phone"`                       // Optional phone of the issuer
}

// CreateShareHandler issues a new share token bound to a resource.
// Creation is rate limited per client IP in addition to the global ceiling.
func CreateShareHandler(shareService *services.ShareService, limiter ratelimit.Admitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if !limiter.Admit(ratelimit.Key("ip", c.ClientIP())) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Share creation limit reached. Please try again later."})
			return
		}

		share, err := shareService.CreateShare(req.ResourceType, req.ResourceID, req.UserPhone)
		if err != nil {
			switch {
			case errors.Is(err, customerrors.ErrInvalidResourceType):
				c.JSON(http.StatusBadRequest, gin.H{"error": "resource_type must be 'job' or 'course'"})
			case errors.Is(err, customerrors.ErrResourceNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced resource does not exist"})
			case errors.Is(err, customerrors.ErrTokenGenerationFailed):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique share token. Please try again later."})
			default:
				log.Printf("Error creating share: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"share_token": share.Token,
			"expires_at":  share.ExpiresAt.Format(time.RFC3339),
		})
	}
}

// GetShareHandler resolves a share token to its descriptor.
func GetShareHandler(shareService *services.ShareService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		share, err := shareService.GetShareByToken(token)
		if err != nil {
			if errors.Is(err, customerrors.ErrShareNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Share token not found or expired"})
				return
			}
			log.Printf("Error resolving share %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"share_token":   share.Token,
			"resource_type": share.ResourceType,
			"resource_id":   share.ResourceID,
			"active":        share.Active,
			"expires_at":    share.ExpiresAt.Format(time.RFC3339),
		})
	}
}

// RecordClickRequest carries the optional client context of a click.
type RecordClickRequest struct {
	SessionID string `json:"session_id"`
	UserAgent string `json:"user_agent"`
}

// RecordClickHandler appends a click event for a token. The response tells
// the caller whether the click was accepted (false means throttled).
func RecordClickHandler(clickService *services.ClickService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var req RecordClickRequest
		// Body is optional; ignore binding errors for an empty body
		_ = c.ShouldBindJSON(&req)

		userAgent := req.UserAgent
		if userAgent == "" {
			userAgent = c.GetHeader("User-Agent")
		}

		err := clickService.RecordClick(token, req.SessionID, userAgent, c.ClientIP())
		if err != nil {
			switch {
			case errors.Is(err, customerrors.ErrShareNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Share token not found or expired"})
			case errors.Is(err, customerrors.ErrThrottled):
				c.JSON(http.StatusTooManyRequests, gin.H{"accepted": false})
			default:
				log.Printf("Error recording click for %s: %v", token, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record click"})
			}
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"accepted": true})
	}
}

// RecordConversionRequest carries the session a conversion belongs to.
type RecordConversionRequest struct {
	SessionID string `json:"session_id"`
}

// RecordConversionHandler marks the latest unconverted click of the token
// (and session) as converted. Replays are accepted and ignored.
func RecordConversionHandler(clickService *services.ClickService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var req RecordConversionRequest
		_ = c.ShouldBindJSON(&req)

		if err := clickService.RecordConversion(token, req.SessionID); err != nil {
			if errors.Is(err, customerrors.ErrShareNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Share token not found or expired"})
				return
			}
			log.Printf("Error recording conversion for %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record conversion"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"accepted": true})
	}
}

// GetShareAnalyticsHandler returns the rollup of one share token.
func GetShareAnalyticsHandler(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		record, err := analytics.GetByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No analytics for this token"})
			return
		}

		c.JSON(http.StatusOK, analyticsJSON(record))
	}
}

// GetResourceAnalyticsHandler returns the rollups of every token of a resource.
func GetResourceAnalyticsHandler(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceType := c.Param("type")
		if !models.ValidResourceType(resourceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource type must be 'job' or 'course'"})
			return
		}

		records, err := analytics.GetForResource(resourceType, c.Param("id"))
		if err != nil {
			log.Printf("Error retrieving resource analytics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		out := make([]gin.H, 0, len(records))
		for i := range records {
			out = append(out, analyticsJSON(&records[i]))
		}
		c.JSON(http.StatusOK, gin.H{"analytics": out})
	}
}

// GetTopResourcesHandler ranks resources by conversions within a window.
// Query parameters: days_ago (default 30) and limit (default 10).
func GetTopResourcesHandler(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceType := c.Param("type")
		if !models.ValidResourceType(resourceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource type must be 'job' or 'course'"})
			return
		}

		var query struct {
			DaysAgo int `form:"days_ago,default=30"`
			Limit   int `form:"limit,default=10"`
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
			return
		}

		top, err := analytics.GetTopResources(resourceType, query.DaysAgo, query.Limit)
		if err != nil {
			log.Printf("Error ranking resources: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"top": top})
	}
}

// RecordEventRequest is the JSON body of the tracking endpoint.
type RecordEventRequest struct {
	EventType    string `json:"event_type" binding:"required"`
	ResourceType string `json:"resource_type" binding:"required"`
	ResourceID   string `json:"resource_id" binding:"required"`
	SessionID    string `json:"session_id"`
	Referrer     string `json:"referrer"`
}

// RecordEventHandler enqueues a tracking event for asynchronous persistence.
// The enqueue is non-blocking: under load we drop the event rather than delay
// the caller, prioritizing user experience over perfect analytics.
func RecordEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecordEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if !models.ValidEventType(req.EventType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": customerrors.ErrInvalidEventType.Error()})
			return
		}
		if !models.ValidResourceType(req.ResourceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource_type must be 'job' or 'course'"})
			return
		}

		event := models.TrackingEvent{
			EventType:    req.EventType,
			ResourceType: req.ResourceType,
			ResourceID:   req.ResourceID,
			SessionID:    req.SessionID,
			Referrer:     req.Referrer,
			UserAgent:    c.GetHeader("User-Agent"),
			IPAddress:    c.ClientIP(),
			Timestamp:    time.Now(),
		}

		select {
		case TrackingEventsChannel <- event:
			c.JSON(http.StatusAccepted, gin.H{"success": true})
		default:
			// Channel buffer is full - drop rather than block
			log.Printf("WARNING: TrackingEventsChannel is full, dropping %s event for %s %s",
				event.EventType, event.ResourceType, event.ResourceID)
			c.JSON(http.StatusAccepted, gin.H{"success": false})
		}
	}
}

// SharedRedirectHandler drives the consumer-facing redirect flow: resolve the
// token, record the click and the optimistic conversion, then redirect the
// visitor to the external resource. Errors map to a small set of terminal,
// user-visible states and never redirect.
func SharedRedirectHandler(redirects *services.RedirectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		// Reuse the visitor's session cookie when present so repeat visits
		// stay attributable to one session
		sessionID, _ := c.Cookie(sessionCookie)

		targetURL, sessionID, err := redirects.Resolve(token, sessionID, c.GetHeader("User-Agent"), c.ClientIP())
		if err != nil {
			switch {
			case errors.Is(err, customerrors.ErrShareNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "expired_or_invalid"})
			case errors.Is(err, customerrors.ErrThrottled):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "throttled"})
			case errors.Is(err, customerrors.ErrResourceNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "resource_not_found"})
			default:
				log.Printf("Error resolving shared link %s: %v", token, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "processing_error"})
			}
			return
		}

		// Persist the session id client-side for conversion attribution
		c.SetCookie(sessionCookie, sessionID, int((24 * time.Hour).Seconds()), "/", "", false, true)

		// HTTP 302 to the external job/course page
		c.Redirect(http.StatusFound, targetURL)
	}
}

// analyticsJSON renders one rollup row in the API's response shape.
func analyticsJSON(record *models.ShareAnalytics) gin.H {
	return gin.H{
		"share_token":       record.ShareToken,
		"resource_type":     record.ResourceType,
		"resource_id":       record.ResourceID,
		"total_shares":      record.TotalShares,
		"total_clicks":      record.TotalClicks,
		"total_conversions": record.TotalConversions,
		"conversion_rate":   record.ConversionRate,
		"last_updated":      record.LastUpdated.Format("2006-01-02 15:04:05"),
	}
}
