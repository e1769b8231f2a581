package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// AuditLog keeps audit entries in memory. Err, when set, is returned from
// every Record call so tests can exercise failing sinks.
type AuditLog struct {
	mu      sync.Mutex
	entries []*simplecms.AuditEntry
	Err     error
}

// NewAuditLog creates an empty in-memory audit log
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

var _ simplecms.AuditReader = (*AuditLog)(nil)

func (a *AuditLog) Record(ctx context.Context, entry *simplecms.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	entryCopy := *entry
	a.entries = append(a.entries, &entryCopy)
	return nil
}

// Entries returns recorded entries, oldest first.
func (a *AuditLog) Entries() []*simplecms.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*simplecms.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Actions returns the recorded action names in order.
func (a *AuditLog) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// ListAudit returns entries newest first. Entries recorded at the same
// instant come back in reverse recording order.
func (a *AuditLog) ListAudit(ctx context.Context, limit, offset int) ([]*simplecms.AuditEntry, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	all := make([]*simplecms.AuditEntry, len(a.entries))
	for i, e := range a.entries {
		all[len(a.entries)-1-i] = e
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*simplecms.AuditEntry{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*simplecms.AuditEntry, 0, end-offset)
	for _, e := range all[offset:end] {
		entryCopy := *e
		out = append(out, &entryCopy)
	}
	return out, total, nil
}
