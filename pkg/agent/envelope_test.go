package agent

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEnvelope() *Envelope {
	e := NewEnvelope("TestActionGroup", "testFunction")
	e.now = func() time.Time { return time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC) }
	return e
}

func decodeBody(t *testing.T, r Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Response.FunctionResponse.ResponseBody.Text.Body), &body))
	return body
}

func TestSuccessBodyIsJSONString(t *testing.T) {
	env := fixedEnvelope()
	r := env.Success(Event{}, map[string]any{"ticker": "AAPL", "data_type": "overview"})

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	// The inner body must be a JSON-encoded string, never a raw object.
	var outer map[string]any
	require.NoError(t, json.Unmarshal(raw, &outer))
	resp := outer["response"].(map[string]any)
	fr := resp["functionResponse"].(map[string]any)
	rb := fr["responseBody"].(map[string]any)
	text := rb["TEXT"].(map[string]any)
	_, isString := text["body"].(string)
	assert.True(t, isString)

	body := decodeBody(t, r)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Equal(t, "2025-01-13T12:00:00Z", body["timestamp"])
}

func TestFailureEnvelopeShape(t *testing.T) {
	env := fixedEnvelope()
	r := env.Failure(Event{}, errors.New("Unable to fetch data for AAPL"))

	body := decodeBody(t, r)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unable to fetch data for AAPL", body["error"])
	assert.NotEmpty(t, body["timestamp"])

	// Failure bodies never carry capability payload fields.
	assert.Len(t, body, 3)
}

func TestShellEchoesEventFields(t *testing.T) {
	env := fixedEnvelope()
	ev := Event{ActionGroup: "FromEvent", Function: "fromEvent", MessageVersion: "1.1"}

	r := env.Success(ev, nil)
	assert.Equal(t, "1.1", r.MessageVersion)
	assert.Equal(t, "FromEvent", r.Response.ActionGroup)
	assert.Equal(t, "fromEvent", r.Response.Function)
}

func TestShellFallsBackToDefaults(t *testing.T) {
	env := fixedEnvelope()

	r := env.Failure(Event{}, errors.New("boom"))
	assert.Equal(t, "1.0", r.MessageVersion)
	assert.Equal(t, "TestActionGroup", r.Response.ActionGroup)
	assert.Equal(t, "testFunction", r.Response.Function)
}

func TestSuccessPreservesExistingTimestamp(t *testing.T) {
	env := fixedEnvelope()
	r := env.Success(Event{}, map[string]any{"timestamp": "2024-06-01T00:00:00Z"})

	body := decodeBody(t, r)
	assert.Equal(t, "2024-06-01T00:00:00Z", body["timestamp"])
}

func TestClassify(t *testing.T) {
	ve := ValidationFailed("Invalid ticker symbol: ZZZZ")
	assert.Same(t, ve, Classify(ve))

	wrapped := Classify(errors.New("boom"))
	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Contains(t, wrapped.Error(), "Internal server error")
}
