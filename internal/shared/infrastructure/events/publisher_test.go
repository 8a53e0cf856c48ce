package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestPublisher() (*KafkaPublisher, map[string]*fakeWriter) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "procurement", zap.NewNop())
	writers := map[string]*fakeWriter{}
	p.newWriter = func(topic string) messageWriter {
		w := &fakeWriter{}
		writers[topic] = w
		return w
	}
	return p, writers
}

func TestKafkaPublisher_Publish(t *testing.T) {
	p, writers := newTestPublisher()
	orderID := uuid.New()

	evt := NewEvent("order.status_changed", orderID, map[string]any{"status": "confirmed"})
	require.NoError(t, p.Publish(context.Background(), "orders", evt))
	require.NoError(t, p.Publish(context.Background(), "orders", evt))

	w := writers["procurement.orders"]
	require.NotNil(t, w)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, orderID.String(), string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "order.status_changed", decoded.Type)
	assert.Equal(t, "confirmed", decoded.Payload["status"])
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p, _ := newTestPublisher()
	p.newWriter = func(string) messageWriter { return &fakeWriter{err: errors.New("broker down")} }

	err := p.Publish(context.Background(), "orders", NewEvent("x", uuid.New(), nil))
	assert.EqualError(t, err, "broker down")
}

func TestKafkaPublisher_CloseClosesWriters(t *testing.T) {
	p, writers := newTestPublisher()
	require.NoError(t, p.Publish(context.Background(), "offers", NewEvent("x", uuid.New(), nil)))

	require.NoError(t, p.Close())
	assert.True(t, writers["procurement.offers"].closed)
}

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil, "procurement", zap.NewNop())
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), "orders", Event{}))
	assert.NoError(t, p.Close())
}
