// Package chat holds the data model shared by the stream parser, protocol
// adapter, tool dispatcher, and turn engine: content blocks, API messages,
// stream events, UI-facing block/update types, and the dynamic JSON value
// used to represent tool-call input before it has fully streamed in.
package chat

import "encoding/json"

// ValueKind discriminates the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a tagged-sum JSON value. Tool-call input streams in as partial
// JSON fragments; rather than requiring a streaming JSON parser, the turn
// engine re-attempts a full json.Unmarshal on every extension (Design Notes
// §9) and stores the latest successfully-parsed value here.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Str    string
	Array  []Value
	Object map[string]Value
}

// EmptyObject returns the {} value used as the default for a tool-use block
// that hasn't received any input yet (spec.md §8 boundary behavior).
func EmptyObject() Value {
	return Value{Kind: KindObject, Object: map[string]Value{}}
}

// ParseValue parses raw into a Value. It never returns a partial result: on
// error the zero Value is returned alongside the error.
func ParseValue(raw []byte) (Value, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, err
	}
	return fromAny(v), nil
}

func fromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case float64:
		return Value{Kind: KindNumber, Number: t}
	case string:
		return Value{Kind: KindString, Str: t}
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = fromAny(e)
		}
		return Value{Kind: KindArray, Array: arr}
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = fromAny(e)
		}
		return Value{Kind: KindObject, Object: obj}
	default:
		return Value{Kind: KindNull}
	}
}

// MarshalJSON renders the Value back to JSON for wire encoding.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toAny())
}

func (v Value) toAny() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.toAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for k, e := range v.Object {
			out[k] = e.toAny()
		}
		return out
	default:
		return nil
	}
}

// AsString extracts a string value, returning ("", false) for any other kind.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}
