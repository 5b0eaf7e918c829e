package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureBackend struct {
	channels []string
	payloads [][]byte
	attrs    []map[string]string

	publishErr error
	closed     bool
}

func (b *captureBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if b.publishErr != nil {
		return "", b.publishErr
	}
	b.channels = append(b.channels, channel)
	b.payloads = append(b.payloads, data)
	b.attrs = append(b.attrs, attrs)
	return "msg-1", nil
}

func (b *captureBackend) Close() error {
	b.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishCarriesEventAttribute(t *testing.T) {
	backend := &captureBackend{}
	pub := NewPublisher(backend, testLogger())

	pub.Publish(context.Background(), ChannelUsers, UserSignedUp, map[string]any{"user_id": 7})

	require.Len(t, backend.channels, 1)
	require.Equal(t, ChannelUsers, backend.channels[0])
	require.Equal(t, UserSignedUp, backend.attrs[0]["event"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(backend.payloads[0], &payload))
	require.Equal(t, float64(7), payload["user_id"])
}

func TestPublishSwallowsBackendFailure(t *testing.T) {
	backend := &captureBackend{publishErr: errors.New("broker down")}
	pub := NewPublisher(backend, testLogger())

	// must not panic or surface the error
	pub.Publish(context.Background(), ChannelPosts, PostCreated, map[string]any{"post_id": 1})
	require.Empty(t, backend.channels)
}

func TestNilPublisherDropsEverything(t *testing.T) {
	var pub *Publisher

	pub.Publish(context.Background(), ChannelUsers, UserSignedUp, struct{}{})
	require.NoError(t, pub.Close())
}

func TestCloseReachesBackend(t *testing.T) {
	backend := &captureBackend{}
	pub := NewPublisher(backend, testLogger())

	require.NoError(t, pub.Close())
	require.True(t, backend.closed)
}
