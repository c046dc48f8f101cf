package filterspec

import "strings"

// QueryDelimiter marks the start of the filter object in an LLM reply.
const QueryDelimiter = "QUERY:"

// Extract pulls a filter specification out of a free-text LLM reply.
//
// The reply is expected to contain QueryDelimiter followed by a JSON
// object. The object is the greedy span from the first '{' to the last '}'
// of the text between this delimiter and the next one. ok is false when
// there is no delimiter or the span does not parse.
func Extract(response string) (spec *Spec, ok bool) {
	_, after, found := strings.Cut(response, QueryDelimiter)
	if !found {
		return nil, false
	}
	if next := strings.Index(after, QueryDelimiter); next >= 0 {
		after = after[:next]
	}

	start := strings.IndexByte(after, '{')
	end := strings.LastIndexByte(after, '}')
	if start < 0 || end < start {
		return nil, false
	}

	spec, err := ParseString(after[start : end+1])
	if err != nil {
		return nil, false
	}
	return spec, true
}
