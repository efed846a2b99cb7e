package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *message.Message) AuthEvent {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		var event AuthEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return AuthEvent{}
	}
}

func TestWatermillPublisher(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signIns, err := pubSub.Subscribe(ctx, TopicSignIn)
	require.NoError(t, err)
	logouts, err := pubSub.Subscribe(ctx, TopicLogout)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub)

	require.NoError(t, p.PublishSignIn(ctx, "Addr1", "s1"))
	event := receive(t, signIns)
	assert.Equal(t, "Addr1", event.Address)
	assert.Equal(t, "s1", event.SessionID)
	assert.False(t, event.OccurredAt.IsZero())

	require.NoError(t, p.PublishLogout(ctx, "Addr1", "s2"))
	event = receive(t, logouts)
	assert.Equal(t, "s2", event.SessionID)
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                               { return nil }

func TestWatermillPublisherError(t *testing.T) {
	p := NewWatermillPublisher(failingPublisher{})
	err := p.PublishLogout(context.Background(), "Addr1", "s1")
	assert.ErrorContains(t, err, "broker down")
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf)).With(watermill.LogFields{"component": "test"})

	logger.Info("hello", watermill.LogFields{"topic": "x"})
	logger.Error("failed", errors.New("boom"), nil)

	out := buf.String()
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"topic":"x"`)
	assert.Contains(t, out, `"error":"boom"`)
}
