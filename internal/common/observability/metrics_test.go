package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoop_IsSafe(t *testing.T) {
	o := NewNoop()
	ctx, span := o.StartSpan(context.Background(), "plantcare.resolve", attribute.String("intent", "PlantCareIntent"))
	defer span.End()

	assert.NotNil(t, ctx)
	o.RecordRequest(ctx, "plant-care", "ok", 5*time.Millisecond)
	o.Shutdown()
}

func TestNilObservability_StartSpan(t *testing.T) {
	var o *Observability
	_, span := o.StartSpan(context.Background(), "chat.detect")
	span.End()
	o.RecordRequest(context.Background(), "chat", "ok", time.Millisecond)
}

func TestNew_RecordsSpans(t *testing.T) {
	o := New("botaniq-test")
	defer o.Shutdown()

	_, span := o.StartSpan(context.Background(), "identify.forward")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	o.RecordRequest(context.Background(), "plant-identify", "ok", 12*time.Millisecond)
}
