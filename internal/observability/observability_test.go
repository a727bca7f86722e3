package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DefaultEndpoint(t *testing.T) {
	cfg := Config{
		Endpoint:    "", // Empty should use default
		Environment: "test",
		ServiceName: "test-service",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg)

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)
}

func TestSetup_CustomEndpoint(t *testing.T) {
	cfg := Config{
		Endpoint:    "custom-host:4318",
		Environment: "staging",
		ServiceName: "custom-service",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg)

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)
}

func TestSetup_CollectorUnavailable_GracefulDegradation(t *testing.T) {
	// Point to a non-existent collector. Exporter creation may succeed
	// but spans will fail to export silently.
	cfg := Config{
		Endpoint:    "localhost:99999",
		Environment: "test",
		ServiceName: "graceful-test",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg)

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)
}

func TestSetup_EmptyConfig(t *testing.T) {
	cfg := Config{}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg)

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)
}

func TestDefaultEndpoint_Value(t *testing.T) {
	assert.Equal(t, "localhost:4318", DefaultEndpoint)
}
