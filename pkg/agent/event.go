// Package agent implements the invocation protocol shared by every Lambda in
// this repository: decoding agent tool-call events, normalizing their
// parameters, and wrapping replies in the envelope the agent expects.
package agent

import (
	"encoding/json"
)

// Parameter is one name/value pair from the agent's parameter list.
type Parameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Event is an inbound invocation. The agent sends a parameter list plus
// protocol metadata; console test events put the same logical keys at the top
// level instead. Both shapes may coexist, so the raw top-level map is kept
// alongside the decoded parameter list.
type Event struct {
	ActionGroup    string
	Function       string
	MessageVersion string
	RequestID      string
	Parameters     []Parameter

	// Direct holds every top-level key of the payload, used for the
	// direct-key extraction pass.
	Direct map[string]any
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ActionGroup, _ = raw["actionGroup"].(string)
	e.Function, _ = raw["function"].(string)
	e.MessageVersion, _ = raw["messageVersion"].(string)
	e.RequestID, _ = raw["requestId"].(string)

	if list, ok := raw["parameters"].([]any); ok {
		e.Parameters = make([]Parameter, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			e.Parameters = append(e.Parameters, Parameter{Name: name, Value: m["value"]})
		}
	}

	e.Direct = raw
	return nil
}
