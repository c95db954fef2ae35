package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpointReportsService(t *testing.T) {
	srv := NewServer(Config{ServiceName: "data-ingestion", Version: "1.2.3"})

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "data-ingestion", body.Service)
	assert.Equal(t, "1.2.3", body.Version)
}

func TestReadyRequiresReadyFlag(t *testing.T) {
	srv := NewServer(Config{ServiceName: "data-ingestion"})

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, 503, rec.Code)

	srv.SetReady(true)
	rec = httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, 200, rec.Code)
}

func TestReadyReportsFailingCheckByName(t *testing.T) {
	srv := NewServer(Config{ServiceName: "data-ingestion"})
	srv.SetReady(true)
	srv.RegisterCheck("stream", func(ctx context.Context) error {
		return fmt.Errorf("candle stream disconnected")
	})

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))

	require.Equal(t, 503, rec.Code)
	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Checks["stream"], "candle stream disconnected")
}
