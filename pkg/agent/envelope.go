package agent

import (
	"encoding/json"
	"time"
)

// Response is the outbound protocol shell. The inner body is always a
// JSON-encoded string, never a raw object.
type Response struct {
	MessageVersion string         `json:"messageVersion"`
	Response       ActionResponse `json:"response"`
}

type ActionResponse struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse FunctionResponse `json:"functionResponse"`
}

type FunctionResponse struct {
	ResponseBody ResponseBody `json:"responseBody"`
}

type ResponseBody struct {
	Text TextBody `json:"TEXT"`
}

type TextBody struct {
	Body string `json:"body"`
}

// Envelope builds protocol replies for one handler. Shell fields are echoed
// from the inbound event when present so the agent can correlate the reply
// even under malformed input, falling back to the handler's defaults.
type Envelope struct {
	actionGroup string
	function    string
	now         func() time.Time
}

func NewEnvelope(actionGroup, function string) *Envelope {
	return &Envelope{actionGroup: actionGroup, function: function, now: time.Now}
}

// Success wraps a payload. The payload map is annotated with success=true and
// a timestamp; capability fields already present are preserved.
func (e *Envelope) Success(ev Event, payload map[string]any) Response {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	if _, ok := body["timestamp"]; !ok {
		body["timestamp"] = e.now().UTC().Format(time.RFC3339)
	}
	return e.wrap(ev, body)
}

// Failure wraps an error as a success-at-transport, failure-in-payload reply.
func (e *Envelope) Failure(ev Event, err error) Response {
	return e.wrap(ev, map[string]any{
		"success":   false,
		"error":     err.Error(),
		"timestamp": e.now().UTC().Format(time.RFC3339),
	})
}

// Text wraps a preformatted plain-text body, used by the adapter.
func (e *Envelope) Text(ev Event, text string) Response {
	return e.shell(ev, text)
}

func (e *Envelope) wrap(ev Event, body map[string]any) Response {
	encoded, err := json.Marshal(body)
	if err != nil {
		// A payload that cannot marshal is a programming error; reply with a
		// minimal failure body rather than breaking the protocol.
		encoded, _ = json.Marshal(map[string]any{
			"success":   false,
			"error":     "Internal server error: response serialization failed",
			"timestamp": e.now().UTC().Format(time.RFC3339),
		})
	}
	return e.shell(ev, string(encoded))
}

func (e *Envelope) shell(ev Event, body string) Response {
	actionGroup := ev.ActionGroup
	if actionGroup == "" {
		actionGroup = e.actionGroup
	}
	function := ev.Function
	if function == "" {
		function = e.function
	}
	messageVersion := ev.MessageVersion
	if messageVersion == "" {
		messageVersion = "1.0"
	}
	return Response{
		MessageVersion: messageVersion,
		Response: ActionResponse{
			ActionGroup: actionGroup,
			Function:    function,
			FunctionResponse: FunctionResponse{
				ResponseBody: ResponseBody{Text: TextBody{Body: body}},
			},
		},
	}
}
