package simplecms

import (
	"fmt"
	"time"
)

// canRestore checks whether an item may be restored from its current status.
// Only trashed items can be restored, so published content is never demoted
// by accident.
func canRestore(status Status) (bool, error) {
	switch status {
	case StatusTrashed:
		return true, nil
	case StatusDraft, StatusScheduled, StatusPublished:
		return false, fmt.Errorf("%w: only trashed items can be restored (status: %s)", ErrInvalidState, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidState, status)
	}
}

// trashedAtFor returns the trashed_at value an item carries after moving
// between statuses through an update: entering trashed stamps now, leaving
// it clears the stamp, staying trashed keeps the current value.
func trashedAtFor(from, to Status, current *time.Time, now time.Time) *time.Time {
	switch {
	case to == StatusTrashed && from != StatusTrashed:
		return &now
	case to != StatusTrashed:
		return nil
	default:
		return current
	}
}
