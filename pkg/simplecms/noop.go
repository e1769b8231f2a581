package simplecms

import (
	"context"
	"time"
)

// NoopAuditSink is a no-operation implementation of AuditSink
type NoopAuditSink struct{}

// NewNoopAuditSink creates a new no-operation audit sink
func NewNoopAuditSink() AuditSink {
	return &NoopAuditSink{}
}

// Record does nothing and returns nil
func (n *NoopAuditSink) Record(ctx context.Context, entry *AuditEntry) error {
	return nil
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
