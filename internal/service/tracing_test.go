package service

import (
	"context"
	"testing"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMutations_EmitSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, duneRequest())
	require.NoError(t, err)

	err = svc.Delete(ctx, carol, created.ID)
	require.ErrorIs(t, err, review.ErrForbidden)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "reviews.create", spans[0].Name())
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, alice.UserID, attrs["user.id"])
	assert.Equal(t, created.ID, attrs["review.id"])
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	assert.Equal(t, "reviews.delete", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
