package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubProvider implements Provider for Google Cloud Pub/Sub.
type PubSubProvider struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubProvider creates a Pub/Sub client and verifies the topic exists,
// failing fast on bad configuration. Authentication uses Application Default
// Credentials.
func NewPubSubProvider(ctx context.Context, projectID, topicID string) (*PubSubProvider, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}

	return &PubSubProvider{client: client, topic: topic}, nil
}

// newWithTopic wires an existing client and topic; used by tests.
func newWithTopic(client *pubsub.Client, topic *pubsub.Topic) *PubSubProvider {
	return &PubSubProvider{client: client, topic: topic}
}

// MemberHarvested publishes the member identity and waits for the broker's
// acknowledgement, so a delivery failure surfaces to the caller.
func (p *PubSubProvider) MemberHarvested(ctx context.Context, memberID string) error {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: []byte(memberID)})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish member %s: %w", memberID, err)
	}
	return nil
}

// Close stops the topic publisher and closes the client.
func (p *PubSubProvider) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
