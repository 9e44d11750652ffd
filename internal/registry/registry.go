// Package registry defines the interfaces for recording harvest results in
// an external database. The abstraction decouples the engine from a specific
// backend and lets the harvester run without any database at all.
package registry

import (
	"context"
	"time"
)

// MemberRecord holds the metadata stored for each harvested member.
type MemberRecord struct {
	RunID       string
	MemberID    string
	ArtifactURI string
	HarvestedAt time.Time
}

// PageRecord holds the metadata stored for each fully processed page.
type PageRecord struct {
	RunID       string
	URL         string
	Members     int
	ProcessedAt time.Time
}

// Provider defines the common interface for the harvest registry. A real
// Postgres registry is used in production; the NoOpProvider serves local
// runs and tests.
type Provider interface {
	// RecordMember stores the metadata of one harvested member.
	RecordMember(ctx context.Context, rec MemberRecord) error

	// RecordPage stores the metadata of one fully processed page.
	RecordPage(ctx context.Context, rec PageRecord) error

	// Close releases the underlying connection pool.
	Close() error
}

// NoOpProvider is a registry that records nothing.
type NoOpProvider struct{}

// RecordMember for NoOpProvider does nothing.
func (NoOpProvider) RecordMember(_ context.Context, _ MemberRecord) error { return nil }

// RecordPage for NoOpProvider does nothing.
func (NoOpProvider) RecordPage(_ context.Context, _ PageRecord) error { return nil }

// Close for NoOpProvider does nothing.
func (NoOpProvider) Close() error { return nil }
