package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent_Fields(t *testing.T) {
	data := map[string]string{"full_address": "12 A St"}
	event, err := NewEvent("address.added", "adr-1", "address", "addressbook", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "address.added", event.EventType)
	assert.Equal(t, "adr-1", event.AggregateID)
	assert.Equal(t, "address", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got map[string]string
	require.NoError(t, event.DecodeData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("x", "a", "t", "s", make(chan int))
	assert.Error(t, err)
}

func TestEvent_EncodeDecode(t *testing.T) {
	original, err := NewEvent("identity.registered", "u-1", "identity", "addressbook", map[string]string{"username": "alice"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-1").WithMetadata("k", "v")

	raw, err := original.Encode()
	require.NoError(t, err)

	restored, err := DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-1", restored.CorrelationID)
	assert.Equal(t, "v", restored.Metadata["k"])
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("{bad"))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "addressbook.address.added", Topic("address", "added"))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"b1:9092", "b2:9092"})
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestProducer_Publish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, discardLogger())

	event, err := NewEvent("address.added", "u-1", "identity", "addressbook", map[string]string{})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(context.Background(), "addressbook.address.added", event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "addressbook.address.added", msg.Topic)
	assert.Equal(t, []byte("u-1"), msg.Key)
	assert.Equal(t, "address.added", header(msg, "event_type"))
	assert.Equal(t, "addressbook", header(msg, "source"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))

	decoded, err := DecodeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, discardLogger())
	event, err := NewEvent("address.added", "u-1", "identity", "addressbook", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, "t", event))
	require.Len(t, w.msgs, 1)
	assert.Contains(t, header(w.msgs[0], "traceparent"), "0af7651916cd43dd8448eb211c80319c")
}

func TestProducer_Publish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, discardLogger())

	event, err := NewEvent("address.added", "u-1", "identity", "addressbook", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "t", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to t")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, discardLogger())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, topic string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "topic", topic) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestProducer_Publish_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewProducerMetrics(reg, "addressbook")
	require.NoError(t, err)

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, discardLogger()).WithMetrics(metrics)
	event, err := NewEvent("address.added", "u-1", "identity", "addressbook", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "ok-topic", event))
	w.err = errors.New("broker down")
	require.Error(t, p.Publish(context.Background(), "bad-topic", event))

	assert.Equal(t, 1.0, counterValue(t, reg, "kafka_producer_messages_published_total", "ok-topic"))
	assert.Equal(t, 1.0, counterValue(t, reg, "kafka_producer_publish_errors_total", "bad-topic"))
	assert.Equal(t, 0.0, counterValue(t, reg, "kafka_producer_publish_errors_total", "ok-topic"))
}

func TestNewProducerMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewProducerMetrics(reg, "addressbook")
	require.NoError(t, err)

	_, err = NewProducerMetrics(reg, "addressbook")
	assert.Error(t, err)
}
