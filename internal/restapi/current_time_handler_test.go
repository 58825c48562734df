package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentTimeHandler(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/where/current-time.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, http.StatusOK, model.Code)
	assert.Equal(t, "OK", model.Text)
	assert.Equal(t, 2, model.Version)

	now := time.Now().UnixMilli()
	assert.InDelta(t, now, model.CurrentTime, 5000)

	entry := entryOf(t, model)
	assert.InDelta(t, now, entry["time"], 5000)
	readable, ok := entry["readableTime"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, readable)
	assert.NoError(t, err)
}

func TestCurrentTimeHandlerInvalidKey(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/where/current-time.json?key=invalid_key")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, model.Code)
	assert.Equal(t, "permission denied", model.Text)
	assert.Equal(t, 1, model.Version)
}
