package filterspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// member is one key/value pair of a JSON object, in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// Parse decodes a filter specification. Any well-formed JSON object is
// accepted; the only errors are malformed JSON and a top level that is not
// an object.
func Parse(data []byte) (*Spec, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("parse filter spec: %w", err)
	}

	spec := &Spec{}
	for _, m := range members {
		spec.Entries = append(spec.Entries, parseEntries(m.Key, m.Value)...)
	}

	spec.canonical, err = canonicalize(members)
	if err != nil {
		return nil, fmt.Errorf("parse filter spec: %w", err)
	}
	return spec, nil
}

// ParseString is Parse for string input.
func ParseString(s string) (*Spec, error) {
	return Parse([]byte(s))
}

func parseEntries(column string, raw json.RawMessage) []Entry {
	switch kindOf(raw) {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return []Entry{{Column: column, Condition: Match{Text: s}}}
	case 't', 'f':
		return []Entry{{Column: column, Condition: Match{Text: string(bytes.TrimSpace(raw))}}}
	case 'n':
		return []Entry{{Column: column, Condition: Invalid{Reason: "null condition"}}}
	case '[':
		return []Entry{{Column: column, Condition: Invalid{Reason: "array condition"}}}
	case '{':
		ops, err := decodeObject(raw)
		if err != nil {
			return []Entry{{Column: column, Condition: Invalid{Reason: err.Error()}}}
		}
		if len(ops) == 0 {
			return []Entry{{Column: column, Condition: Invalid{Reason: "empty operator object"}}}
		}
		entries := make([]Entry, 0, len(ops))
		for _, op := range ops {
			entries = append(entries, Entry{
				Column: column,
				Condition: Compare{
					Op:    ParseOp(op.Key),
					RawOp: op.Key,
					Value: parseDynamic(op.Value),
					Raw:   display(op.Value),
				},
			})
		}
		return entries
	default:
		// Numbers keep their literal text for substring matching.
		return []Entry{{Column: column, Condition: Match{Text: string(bytes.TrimSpace(raw))}}}
	}
}

func parseDynamic(raw json.RawMessage) DynamicValue {
	switch kindOf(raw) {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		if agg, ok := selfAggregate(s); ok {
			return SelfAggregate{Agg: agg}
		}
		if v, ok := parseNumber(s); ok {
			return Number{V: v}
		}
		return Unresolved{}
	case '{':
		members, err := decodeObject(raw)
		if err != nil {
			return Unresolved{}
		}
		return memberValue(members)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, ok := parseNumber(string(raw)); ok {
			return Number{V: v}
		}
		return Unresolved{}
	case 't', 'f':
		return boolNumber(raw)
	default:
		return Unresolved{}
	}
}

// memberValue picks the first usable member of an aggregate object: a
// "$Column" reference or a number. A reference keeps the value of the
// members after it in Else, used when the column is absent.
func memberValue(members []member) DynamicValue {
	for i, m := range members {
		switch kindOf(m.Value) {
		case '"':
			var ref string
			_ = json.Unmarshal(m.Value, &ref)
			if strings.HasPrefix(ref, "$") {
				ca := ColumnAggregate{
					Agg:    ParseAgg(m.Key),
					RawAgg: m.Key,
					Column: strings.TrimSpace(ref[1:]),
				}
				if rest := memberValue(members[i+1:]); rest != (Unresolved{}) {
					ca.Else = rest
				}
				return ca
			}
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if v, ok := parseNumber(string(m.Value)); ok {
				return Number{V: v}
			}
		case 't', 'f':
			if n, ok := boolNumber(m.Value).(Number); ok {
				return n
			}
		}
	}
	return Unresolved{}
}

// boolNumber reads true as 1 and false as 0.
func boolNumber(raw json.RawMessage) DynamicValue {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return Number{V: 1}
	case "false":
		return Number{V: 0}
	default:
		return Unresolved{}
	}
}

// parseNumber accepts anything ParseFloat reads, including overflow to
// ±Inf. NaN is rejected.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// decodeObject decodes a JSON object into its members in document order.
// A repeated key keeps its first position and takes the last value.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var members []member
	position := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		if i, dup := position[key]; dup {
			members[i].Value = value
			continue
		}
		position[key] = len(members)
		members = append(members, member{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return members, nil
}

// kindOf returns the first significant byte of a JSON value.
func kindOf(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// display renders a raw value for diagnostics: strings bare, anything else
// as compact JSON.
func display(raw json.RawMessage) string {
	if kindOf(raw) == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
