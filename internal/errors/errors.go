package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the share tracking engine

// ErrShareNotFound is returned when a share token is absent, inactive or expired
var ErrShareNotFound = errors.New("share token not found or expired")

// ErrResourceNotFound is returned when the job or course bound to a token no longer resolves
var ErrResourceNotFound = errors.New("resource not found")

// ErrInvalidResourceType is returned when the resource type is not 'job' or 'course'
var ErrInvalidResourceType = errors.New("invalid resource type")

// ErrThrottled is returned when a rate ceiling was exceeded; the caller should back off
var ErrThrottled = errors.New("rate limit exceeded")

// ErrTokenGenerationFailed is returned when we can't generate a unique share token
var ErrTokenGenerationFailed = errors.New("failed to generate unique share token")

// ErrInvalidEventType is returned when a tracking event type is outside the known set
var ErrInvalidEventType = errors.New("invalid event type")

// ErrClickRecordingFailed is returned when click recording fails
type ErrClickRecordingFailed struct {
	Token  string
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for token %s: %s", e.Token, e.Reason)
}

// ErrURLCheckFailed is returned when a resource link health check fails
type ErrURLCheckFailed struct {
	URL    string
	Reason string
}

func (e ErrURLCheckFailed) Error() string {
	return fmt.Sprintf("failed to check URL %s: %s", e.URL, e.Reason)
}
