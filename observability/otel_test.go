package observability

import (
	"context"
	"testing"

	"praytogether-backend/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.NewNop(), OtelConfig{Enabled: false})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitOTelStdout(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.NewNop(), OtelConfig{
		Enabled:     true,
		Environment: "test",
		SampleRatio: 1,
	})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
