// Package notify defines the interface for publishing member-harvested
// events to a message broker, so downstream consumers can react to new
// members without polling the cache directory.
package notify

import "context"

// Provider defines the common interface for harvest notifications.
type Provider interface {
	// MemberHarvested announces that the member with the given identity has
	// been persisted. It returns an error when the event could not be
	// delivered, so the caller can log the loss.
	MemberHarvested(ctx context.Context, memberID string) error

	// Close flushes pending messages and releases the client.
	Close() error
}

// NoOpProvider is a notifier that publishes nothing.
type NoOpProvider struct{}

// MemberHarvested for NoOpProvider does nothing.
func (NoOpProvider) MemberHarvested(_ context.Context, _ string) error { return nil }

// Close for NoOpProvider does nothing.
func (NoOpProvider) Close() error { return nil }
