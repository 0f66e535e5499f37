package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	customerrors "github.com/axellelanca/sharetracker/internal/errors"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/axellelanca/sharetracker/internal/services"
)

// CreateJobRequest represents the JSON request body for registering a job.
type CreateJobRequest struct {
	Title   string `json:"title" binding:"required"`
	Company string `json:"company"`
	Link    string `json:"link" binding:"required,url"`
}

// CreateCourseRequest represents the JSON request body for registering a course.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Institution string `json:"institution"`
	Link        string `json:"link" binding:"required,url"`
}

// CreateJobHandler registers a job offer, rate limited per client IP.
func CreateJobHandler(resources *services.ResourceService, limiter ratelimit.Admitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if !limiter.Admit(ratelimit.Key("ip", c.ClientIP())) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Job creation limit reached. Please try again later."})
			return
		}

		job, err := resources.CreateJob(req.Title, req.Company, req.Link)
		if err != nil {
			log.Printf("Error creating job: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": job.ID, "title": job.Title, "status": job.Status})
	}
}

// GetJobHandler retrieves a job by id.
func GetJobHandler(resources *services.ResourceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := resources.GetJob(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrResourceNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
				return
			}
			log.Printf("Error retrieving job: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      job.ID,
			"title":   job.Title,
			"company": job.Company,
			"link":    job.Link,
			"status":  job.Status,
		})
	}
}

// CreateCourseHandler registers a course, rate limited per client IP.
func CreateCourseHandler(resources *services.ResourceService, limiter ratelimit.Admitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCourseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if !limiter.Admit(ratelimit.Key("ip", c.ClientIP())) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Course creation limit reached. Please try again later."})
			return
		}

		course, err := resources.CreateCourse(req.Title, req.Institution, req.Link)
		if err != nil {
			log.Printf("Error creating course: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": course.ID, "title": course.Title, "status": course.Status})
	}
}

// GetCourseHandler retrieves a course by id.
func GetCourseHandler(resources *services.ResourceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := resources.GetCourse(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrResourceNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			log.Printf("Error retrieving course: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":          course.ID,
			"title":       course.Title,
			"institution": course.Institution,
			"link":        course.Link,
			"status":      course.Status,
		})
	}
}
