package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/videotube-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertEnvelope decodes a success envelope, checks its status and decodes data into v
func AssertEnvelope(t *testing.T, resp *http.Response, expectedStatus int, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code: %s", string(body))

	var env struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Success    bool            `json:"success"`
	}
	require.NoError(t, json.Unmarshal(body, &env), "failed to unmarshal response: %s", string(body))
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.True(t, env.Success)

	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v), "failed to unmarshal data: %s", string(env.Data))
	}
}

// AssertErrorResponse verifies the error envelope status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code: %s", string(body))

	var env struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Success    bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(body, &env), "failed to unmarshal response: %s", string(body))
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, expectedMessage, "error message mismatch")
}

// AssertAppError verifies err is an application error with the given status
func AssertAppError(t *testing.T, err error, expectedStatus int) {
	t.Helper()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected *apperr.Error, got %T: %v", err, err)
	assert.Equal(t, expectedStatus, ae.Status, "unexpected status for %q", ae.Message)
}
