package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const sampleTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestTraceparentRoundTripThroughKafkaHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx := WithTraceparent(context.Background(), sampleTraceparent)
	assert.Equal(t, sampleTraceparent, Traceparent(ctx))

	headers := InjectKafkaHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte("OrderPlaced")}})
	require.Len(t, headers, 2)

	got := trace.SpanContextFromContext(ExtractKafkaHeaders(context.Background(), headers))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", got.SpanID().String())
}

func TestWithTraceparentEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTraceparent(ctx, ""))
	assert.Empty(t, Traceparent(ctx))
}

func TestInjectOverwritesStaleTraceparent(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx := WithTraceparent(context.Background(), sampleTraceparent)
	stale := []kafka.Header{{Key: TraceparentHeader, Value: []byte("00-00000000000000000000000000000001-0000000000000001-01")}}

	headers := InjectKafkaHeaders(ctx, stale)
	require.Len(t, headers, 1)
	assert.Equal(t, sampleTraceparent, KafkaHeaderCarrier{Headers: &headers}.Get(TraceparentHeader))
}
