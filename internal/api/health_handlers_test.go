package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["catalog"].Status)
	assert.Equal(t, "4 artists", health.Components["catalog"].Message)
	assert.Equal(t, "healthy", health.Components["search"].Status)
	assert.Contains(t, health.Components["forms"].Message, "drafts disabled")
}

func TestHealthCheck_DegradedWithoutSearch(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	ts.server.services.Search = nil

	resp := ts.api.Get("/health")

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "degraded", health.Components["search"].Status)
}

func TestFormatSessionCount(t *testing.T) {
	assert.Equal(t, "no active sessions", formatSessionCount(0))
	assert.Equal(t, "1 active session", formatSessionCount(1))
	assert.Equal(t, "3 active sessions", formatSessionCount(3))
}
