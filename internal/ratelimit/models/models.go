// Package models defines the rate limit classes and decisions.
package models

import (
	"time"
)

type EndpointClass string

const (
	// ClassAuth covers login and registration, keyed by client IP.
	ClassAuth EndpointClass = "auth"
	// ClassWrite covers uploads and submissions, keyed by user.
	ClassWrite EndpointClass = "write"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassWrite:
		return true
	}
	return false
}

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Default limits per class.
var DefaultLimits = map[EndpointClass]Limit{
	ClassAuth:  {Requests: 20, Window: time.Minute},
	ClassWrite: {Requests: 30, Window: time.Minute},
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds; zero when allowed
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	RetryAfter  int    `json:"retry_after"`
}

// Key builds the bucket key for a class and identifier.
func Key(class EndpointClass, identifier string) string {
	return "ratelimit:" + string(class) + ":" + identifier
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds.
func RetryAfterSeconds(allowed bool, resetAt, now time.Time) int {
	if allowed {
		return 0
	}
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return 1
	}
	seconds := int(wait / time.Second)
	if wait%time.Second != 0 {
		seconds++
	}
	return seconds
}
