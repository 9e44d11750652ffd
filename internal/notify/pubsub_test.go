package notify

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newFakePubSub(t *testing.T) (*pstest.Server, *pubsub.Client) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(context.Background(), "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return srv, client
}

func TestMemberHarvestedPublishes(t *testing.T) {
	srv, client := newFakePubSub(t)

	topic, err := client.CreateTopic(context.Background(), "harvested")
	require.NoError(t, err)

	p := newWithTopic(client, topic)
	require.NoError(t, p.MemberHarvested(context.Background(), "https://x/m1"))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "https://x/m1", string(msgs[0].Data))
}

func TestMemberHarvestedSurfacesPublishFailure(t *testing.T) {
	_, client := newFakePubSub(t)

	topic, err := client.CreateTopic(context.Background(), "harvested")
	require.NoError(t, err)

	p := newWithTopic(client, topic)
	topic.Stop()

	err = p.MemberHarvested(context.Background(), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish member m1")
}

func TestNoOpNotifier(t *testing.T) {
	p := NoOpProvider{}
	assert.NoError(t, p.MemberHarvested(context.Background(), "m1"))
	assert.NoError(t, p.Close())
}
