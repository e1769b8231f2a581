package simplecms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoAuditReader = errors.New("audit log is not readable")

// LogAuditSink writes audit entries to a zap logger. It is the default sink
// when no database is configured.
type LogAuditSink struct {
	logger *zap.Logger
}

// NewLogAuditSink creates an audit sink backed by logger.
func NewLogAuditSink(logger *zap.Logger) AuditSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogAuditSink{logger: logger.Named("audit")}
}

func (s *LogAuditSink) Record(ctx context.Context, entry *AuditEntry) error {
	s.logger.Info(entry.Action,
		zap.Stringer("actor_id", entry.ActorID),
		zap.String("entity_type", entry.EntityType),
		zap.Stringer("entity_id", entry.EntityID),
		zap.Any("details", entry.Details),
		zap.Time("at", entry.CreatedAt),
	)
	return nil
}

// MultiAuditSink fans an entry out to several sinks and reports the first
// failure after trying all of them.
type MultiAuditSink []AuditSink

func (m MultiAuditSink) Record(ctx context.Context, entry *AuditEntry) error {
	var first error
	for _, sink := range m {
		if err := sink.Record(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ListAudit reads from the first sink that can be read back.
func (m MultiAuditSink) ListAudit(ctx context.Context, limit, offset int) ([]*AuditEntry, int64, error) {
	for _, sink := range m {
		if reader, ok := sink.(AuditReader); ok {
			return reader.ListAudit(ctx, limit, offset)
		}
	}
	return nil, 0, errNoAuditReader
}

// ListAuditLog returns one page of the audit log, newest first.
func (s *service) ListAuditLog(ctx context.Context, page, perPage int) (*AuditPage, error) {
	f := ListFilter{Page: page, PerPage: perPage}.Normalize()
	if s.auditReader == nil {
		return nil, s.fail("audit", "list", uuid.Nil, errNoAuditReader)
	}
	entries, total, err := s.auditReader.ListAudit(ctx, f.PerPage, f.Offset())
	if err != nil {
		return nil, s.fail("audit", "list", uuid.Nil, err)
	}
	return &AuditPage{Entries: entries, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}
