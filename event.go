package relay

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Event is the unit of dispatch. Criteria is the match subject; Params is
// populated by capture groups from every matched route, merged in match
// order with later matches overwriting same-named entries. Payload is an
// optional JSON body that conditions and typed handlers can query.
//
// Events are mutated during dispatch; the populated Params map is a side
// effect visible to the caller after Dispatch returns.
type Event struct {
	Criteria string
	Params   map[string]string
	Payload  json.RawMessage
}

// HasField reports whether path exists in the event payload.
// Paths use gjson syntax, e.g. "user.id".
func (e *Event) HasField(path string) bool {
	return gjson.GetBytes(e.Payload, path).Exists()
}

// FieldString returns the string value at path, or false if the path is
// missing or not a string.
func (e *Event) FieldString(path string) (string, bool) {
	r := gjson.GetBytes(e.Payload, path)
	if !r.Exists() || r.Type != gjson.String {
		return "", false
	}
	return r.String(), true
}

// FieldBytes returns the raw JSON value at path, or false if not found.
// For strings this includes the surrounding quotes.
func (e *Event) FieldBytes(path string) ([]byte, bool) {
	r := gjson.GetBytes(e.Payload, path)
	if !r.Exists() {
		return nil, false
	}
	return []byte(r.Raw), true
}

func (e *Event) setParam(name, value string) {
	if e.Params == nil {
		e.Params = make(map[string]string)
	}
	e.Params[name] = value
}
