// Package simplecms provides the content lifecycle and revision engine for a
// small content-management backend serving pages and articles.
//
// A single Service owns one lifecycle engine per content kind. Every engine
// enforces the same rules: slugs are unique per kind, each create or update
// appends an immutable Revision, trashed items are retained for a 30 day
// window before permanent erasure, and restore is only allowed from the
// trashed state. A Scheduler advances time-dependent state (scheduled items
// becoming published, trash expiry, session expiry) against the same
// Repository.
//
// Repository implementations (memory, Postgres) live under repo/, blob
// stores for media (memory, filesystem, S3) under storage/.
package simplecms
