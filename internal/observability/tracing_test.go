package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "blogicum-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_IsSafeWithoutProvider(t *testing.T) {
	span, ctx := StartSpan(context.Background(), "PostService", "Create", attribute.Int("author_id", 1))
	require.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
	assert.Len(t, span.TraceID(), 32)
}
