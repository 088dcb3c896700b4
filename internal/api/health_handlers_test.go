package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	_, api := setupTestServer(t)

	rec := api.Get("/health")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[HealthResponse](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Contains(t, env.Data.Components["database"].Message, "badger")
}

func TestHealthCheck_NoStore(t *testing.T) {
	s := &Server{}

	out, err := s.handleHealthCheck(t.Context(), nil)

	require.NoError(t, err)
	assert.Equal(t, "degraded", out.Body.Status)
}
