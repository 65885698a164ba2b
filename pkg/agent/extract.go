package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind selects the coercion applied to an argument value.
type Kind int

const (
	String Kind = iota
	// Ticker values are uppercased and trimmed.
	Ticker
	// Enum values are lowercased and trimmed.
	Enum
	// TickerList accepts a JSON array string, a comma-separated string, or a
	// plain array, and normalizes each element like Ticker.
	TickerList
	// JSON values are parsed when given as a string. A parse failure degrades
	// to {"raw_value": <original>} instead of failing the request.
	JSON
	// Float values are parsed from numbers or numeric strings.
	Float
)

// Field declares one expected argument of a handler.
type Field struct {
	Name     string
	Kind     Kind
	Default  any
	Required bool
}

// Spec is the full argument declaration of a handler.
type Spec struct {
	Fields []Field
}

// Args is the normalized, typed argument set produced by extraction.
type Args map[string]any

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) StringList(name string) []string {
	l, _ := a[name].([]string)
	return l
}

func (a Args) Map(name string) map[string]any {
	m, _ := a[name].(map[string]any)
	return m
}

func (a Args) Float(name string) (float64, bool) {
	f, ok := a[name].(float64)
	return f, ok
}

// Merge combines the two partial argument sources with a fixed precedence:
// direct top-level keys always override parameter-list values. The override
// exists to support console test events; agent-supplied and direct values for
// the same argument cannot safely coexist.
func Merge(fromList, fromDirect map[string]any) map[string]any {
	merged := make(map[string]any, len(fromList)+len(fromDirect))
	for name, v := range fromList {
		merged[name] = v
	}
	for name, v := range fromDirect {
		merged[name] = v
	}
	return merged
}

// Extract normalizes an inbound event into typed arguments, or fails with a
// MissingParameter error naming the first required argument that is empty.
func (s Spec) Extract(ev Event) (Args, error) {
	merged := Merge(s.collectList(ev.Parameters), s.collectDirect(ev.Direct))

	args := Args{}
	for _, f := range s.Fields {
		raw, ok := merged[f.Name]
		if !ok {
			if f.Default != nil {
				args[f.Name] = f.Default
			}
			continue
		}
		if v := coerce(f.Kind, raw); v != nil {
			args[f.Name] = v
		}
	}

	for _, f := range s.Fields {
		if f.Required && isEmpty(args[f.Name]) {
			return nil, MissingParameter(f.Name)
		}
	}
	return args, nil
}

// collectList scans the parameter list once, in order; for duplicates the
// last write wins.
func (s Spec) collectList(params []Parameter) map[string]any {
	out := map[string]any{}
	for _, p := range params {
		if p.Value == nil || !s.expects(p.Name) {
			continue
		}
		out[p.Name] = p.Value
	}
	return out
}

func (s Spec) collectDirect(direct map[string]any) map[string]any {
	out := map[string]any{}
	for _, f := range s.Fields {
		if v, ok := direct[f.Name]; ok && v != nil {
			out[f.Name] = v
		}
	}
	return out
}

func (s Spec) expects(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func coerce(kind Kind, raw any) any {
	switch kind {
	case Ticker:
		return strings.ToUpper(strings.TrimSpace(asString(raw)))
	case Enum:
		return strings.ToLower(strings.TrimSpace(asString(raw)))
	case TickerList:
		return coerceTickerList(raw)
	case JSON:
		return coerceJSON(raw)
	case Float:
		return coerceFloat(raw)
	default:
		return strings.TrimSpace(asString(raw))
	}
}

func coerceTickerList(raw any) []string {
	var elems []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			elems = append(elems, asString(item))
		}
	case string:
		trimmed := strings.TrimSpace(v)
		var parsed []string
		if strings.HasPrefix(trimmed, "[") && json.Unmarshal([]byte(trimmed), &parsed) == nil {
			elems = parsed
		} else {
			elems = strings.Split(trimmed, ",")
		}
	default:
		elems = []string{asString(raw)}
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if t := strings.ToUpper(strings.TrimSpace(e)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func coerceJSON(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return parsed
		}
		return map[string]any{"raw_value": v}
	default:
		return map[string]any{"raw_value": fmt.Sprintf("%v", raw)}
	}
}

func coerceFloat(raw any) any {
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	// Keep the original string so the handler can report it.
	return asString(raw)
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
