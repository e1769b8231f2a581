package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTickInterval is how often the scheduler runs.
const DefaultTickInterval = 60 * time.Second

const schedulerLockKey = "simple-cms:scheduler:tick"

// Scheduler advances time-dependent state: scheduled items whose publish_at
// has passed are published, expired trash is erased and expired sessions are
// removed. It keeps no state between ticks; every tick recomputes
// eligibility from storage.
type Scheduler struct {
	repo     ItemRepository
	sessions SessionStore
	locker   Locker
	clock    Clock
	logger   *zap.Logger
	interval time.Duration
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerSessions sets the session store swept each tick.
func WithSchedulerSessions(store SessionStore) SchedulerOption {
	return func(s *Scheduler) {
		s.sessions = store
	}
}

// WithSchedulerLocker makes each tick acquire a distributed lock first.
func WithSchedulerLocker(locker Locker) SchedulerOption {
	return func(s *Scheduler) {
		s.locker = locker
	}
}

// WithSchedulerClock overrides the clock.
func WithSchedulerClock(clock Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *zap.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithTickInterval overrides the tick period.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewScheduler creates a scheduler over repo.
func NewScheduler(repo ItemRepository, opts ...SchedulerOption) (*Scheduler, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	s := &Scheduler{
		repo:     repo,
		clock:    SystemClock{},
		logger:   zap.NewNop(),
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scheduler")
	return s, nil
}

// TickReport summarises one scheduler pass.
type TickReport struct {
	At              time.Time      `json:"at"`
	Skipped         bool           `json:"skipped,omitempty"`
	Published       map[Kind]int64 `json:"published"`
	Purged          map[Kind]int64 `json:"purged"`
	SessionsExpired int64          `json:"sessions_expired"`
	Errors          []error        `json:"-"`
}

// Err joins the step failures of the tick.
func (r *TickReport) Err() error {
	return errors.Join(r.Errors...)
}

// Tick runs one pass. Each step runs even when an earlier one failed; step
// failures are logged and collected in the report.
func (s *Scheduler) Tick(ctx context.Context) *TickReport {
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	report := &TickReport{
		At:        now,
		Published: make(map[Kind]int64),
		Purged:    make(map[Kind]int64),
	}

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, schedulerLockKey, s.interval)
		if err != nil {
			s.stepFailed(report, "acquire scheduler lock", err)
			report.Skipped = true
			return report
		}
		if !ok {
			s.logger.Debug("another replica holds the scheduler lock")
			report.Skipped = true
			return report
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release scheduler lock", zap.Error(err))
			}
		}()
	}

	for _, kind := range Kinds {
		n, err := s.repo.PublishDue(ctx, kind, now)
		if err != nil {
			s.stepFailed(report, "publish scheduled "+string(kind), err)
			continue
		}
		report.Published[kind] = n
		if n > 0 {
			s.logger.Info("published scheduled items", zap.String("kind", string(kind)), zap.Int64("count", n))
		}
	}

	cutoff := RetentionCutoff(now)
	for _, kind := range Kinds {
		n, err := s.repo.PurgeTrashed(ctx, kind, cutoff)
		if err != nil {
			s.stepFailed(report, "purge "+string(kind)+" trash", err)
			continue
		}
		report.Purged[kind] = n
		if n > 0 {
			s.logger.Info("purged expired trash", zap.String("kind", string(kind)), zap.Int64("count", n))
		}
	}

	if s.sessions != nil {
		n, err := s.sessions.DeleteExpired(ctx, now)
		if err != nil {
			s.stepFailed(report, "expire sessions", err)
		} else {
			report.SessionsExpired = n
			if n > 0 {
				s.logger.Info("removed expired sessions", zap.Int64("count", n))
			}
		}
	}

	return report
}

func (s *Scheduler) stepFailed(report *TickReport, step string, err error) {
	s.logger.Error("scheduler step failed", zap.String("step", step), zap.Error(err))
	report.Errors = append(report.Errors, fmt.Errorf("%s: %w", step, err))
}

// Run ticks every interval until ctx is cancelled. A tick that is still
// running when the next one is due causes the next one to be skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule tick %q: %w", spec, err)
	}

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
