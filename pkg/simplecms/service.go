package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	auditSink   AuditSink
	auditReader AuditReader
	sanitizer   Sanitizer
	clock       Clock
	logger      *zap.Logger

	engines map[Kind]*engine
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob store holding media bytes
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithAuditSink sets the audit sink for the service
func WithAuditSink(sink AuditSink) Option {
	return func(s *service) {
		s.auditSink = sink
	}
}

// WithAuditReader sets where the audit log is read back from. When unset,
// the audit sink is used if it can be read.
func WithAuditReader(reader AuditReader) Option {
	return func(s *service) {
		s.auditReader = reader
	}
}

// WithSanitizer sets the rich text sanitizer applied to content on write
func WithSanitizer(sanitizer Sanitizer) Option {
	return func(s *service) {
		s.sanitizer = sanitizer
	}
}

// WithClock overrides the clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.auditSink == nil {
		s.auditSink = NewNoopAuditSink()
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if s.auditReader == nil {
		if reader, ok := s.auditSink.(AuditReader); ok {
			s.auditReader = reader
		}
	}

	s.engines = make(map[Kind]*engine, len(Kinds))
	for _, kind := range Kinds {
		desc, ok := DescriptorFor(kind)
		if !ok {
			return nil, fmt.Errorf("no descriptor for content kind %q", kind)
		}
		s.engines[kind] = &engine{s: s, desc: desc}
	}

	return s, nil
}

func (s *service) Pages() Lifecycle {
	return s.engines[KindPage]
}

func (s *service) Articles() Lifecycle {
	return s.engines[KindArticle]
}

func (s *service) Lifecycle(kind Kind) (Lifecycle, error) {
	if e, ok := s.engines[kind]; ok {
		return e, nil
	}
	return nil, errInvalidf("unknown content kind %q", kind)
}

// now returns the current time at the precision Postgres stores.
func (s *service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// record writes an audit entry. Failures are logged and swallowed.
func (s *service) record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) {
	entry := &AuditEntry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  s.now(),
	}
	if err := s.auditSink.Record(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Stringer("entity_id", entityID),
			zap.Error(err))
	}
}

// fail wraps err for the caller. Caller-correctable errors pass through;
// anything else is logged in full and replaced by ErrStorage.
func (s *service) fail(entity, op string, id uuid.UUID, err error) error {
	var ee *EntityError
	if errors.As(err, &ee) {
		return err
	}
	if IsCallerError(err) {
		return &EntityError{Entity: entity, ID: id, Op: op, Err: err}
	}
	s.logger.Error("storage failure",
		zap.String("entity", entity),
		zap.String("op", op),
		zap.Stringer("id", id),
		zap.Error(err))
	return &EntityError{Entity: entity, ID: id, Op: op, Err: ErrStorage}
}

func (s *service) sanitize(html string) string {
	if s.sanitizer == nil {
		return html
	}
	return s.sanitizer.Sanitize(html)
}
