// Package tracer is a small tracing abstraction used by the onboarding
// workflow. Services depend on Tracer; production wires the OpenTelemetry
// adapter and tests use the no-op tracer.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute         { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute       { return Attribute{Key: key, Value: value} }
func Int64(key string, value int64) Attribute     { return Attribute{Key: key, Value: value} }
func Int(key string, value int) Attribute         { return Attribute{Key: key, Value: int64(value)} }
func Float64(key string, value float64) Attribute { return Attribute{Key: key, Value: value} }

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanSubmit = "onboarding.submit"
	SpanUpload = "onboarding.upload"
	SpanReview = "onboarding.review"
)

// Attribute keys.
const (
	AttrUserID        = "user.id"
	AttrApplicationID = "application.id"
	AttrStatus        = "application.status"
	AttrDecision      = "review.decision"
	AttrDocumentType  = "document.type"
	AttrStagedCount   = "documents.staged"
	AttrDocumentCount = "documents.total"
	AttrFileSize      = "file.size_bytes"
)

// Event names.
const (
	EventValidated = "validated"
	EventUploaded  = "document.uploaded"
	EventPersisted = "persisted"
)
