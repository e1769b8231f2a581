package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

// Env bundles an in-memory service with handles on its collaborators.
type Env struct {
	Service  simplecms.Service
	Repo     *memory.Repository
	Audit    *memory.AuditLog
	Sessions *memory.SessionStore
	Blobs    *memorystorage.Backend
	Clock    *StubClock
}

// NewEnv creates a service backed by memory implementations and a stub clock.
func NewEnv(t *testing.T, opts ...simplecms.Option) *Env {
	t.Helper()

	clock := FixedClock()
	env := &Env{
		Repo:     memory.New(),
		Audit:    memory.NewAuditLog(),
		Sessions: memory.NewSessionStore(clock.Now),
		Blobs:    memorystorage.New(),
		Clock:    clock,
	}

	options := []simplecms.Option{
		simplecms.WithRepository(env.Repo),
		simplecms.WithAuditSink(env.Audit),
		simplecms.WithBlobStore(env.Blobs),
		simplecms.WithClock(clock),
	}
	svc, err := simplecms.New(append(options, opts...)...)
	require.NoError(t, err)
	env.Service = svc
	return env
}

// NewScheduler creates a scheduler over the environment's repository and
// session store.
func (e *Env) NewScheduler(t *testing.T, opts ...simplecms.SchedulerOption) *simplecms.Scheduler {
	t.Helper()

	options := []simplecms.SchedulerOption{
		simplecms.WithSchedulerSessions(e.Sessions),
		simplecms.WithSchedulerClock(e.Clock),
	}
	s, err := simplecms.NewScheduler(e.Repo, append(options, opts...)...)
	require.NoError(t, err)
	return s
}
