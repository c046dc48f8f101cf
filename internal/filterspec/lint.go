package filterspec

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/roach88/sift/internal/table"
)

//go:embed schema.json
var schemaJSON string

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// Advisory sources.
const (
	SourceSchema   = "schema"
	SourceSemantic = "semantic"
)

// Advisory is one lint finding. Advisories never block resolution; they
// predict the warnings the resolver would emit.
type Advisory struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Lint checks a raw specification against the JSON Schema of the expected
// shape and reports semantic problems of the parsed conditions. When t is
// non-nil, column references are checked against it as well.
//
// Returns an error only when data does not parse as a JSON object.
func Lint(data []byte, t *table.Table) ([]Advisory, error) {
	spec, err := Parse(data)
	if err != nil {
		return nil, err
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load spec schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate spec: %w", err)
	}

	var advisories []Advisory
	for _, e := range result.Errors() {
		advisories = append(advisories, Advisory{
			Field:   e.Field(),
			Message: e.Description(),
			Source:  SourceSchema,
		})
	}

	for _, entry := range spec.Entries {
		advisories = append(advisories, lintEntry(entry, t)...)
	}
	return advisories, nil
}

func lintEntry(entry Entry, t *table.Table) []Advisory {
	semantic := func(format string, args ...any) Advisory {
		return Advisory{Field: entry.Column, Message: fmt.Sprintf(format, args...), Source: SourceSemantic}
	}

	var out []Advisory
	if t != nil && !t.HasColumn(entry.Column) {
		out = append(out, semantic("column %q not found in dataset", entry.Column))
	}

	switch c := entry.Condition.(type) {
	case Invalid:
		out = append(out, semantic("unsupported condition: %s", c.Reason))
	case Compare:
		if c.Op == OpUnknown {
			out = append(out, semantic("unsupported operator %q", c.RawOp))
		}
		switch v := c.Value.(type) {
		case Unresolved:
			out = append(out, semantic("comparison value %q cannot be resolved", c.Raw))
		case ColumnAggregate:
			if v.Agg == table.AggUnknown {
				out = append(out, semantic("unknown aggregate %q", v.RawAgg))
			}
			if t != nil && !t.HasColumn(v.Column) {
				if v.Else != nil {
					out = append(out, semantic("referenced column %q not found in dataset; the next value is used", v.Column))
				} else {
					out = append(out, semantic("referenced column %q not found in dataset", v.Column))
				}
			}
		}
	}
	return out
}
