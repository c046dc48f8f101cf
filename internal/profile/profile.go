// Package profile loads CUE tuning profiles.
//
// A profile adjusts the identifier heuristic and presentation defaults:
//
//	identifier: {
//		markers: ["id", "code", "ref"]
//		min_unique_fraction: 0.02
//	}
//	sample_rows: 10
//
// Profiles are validated against an embedded closed schema, so unknown
// fields and out-of-range values are errors.
package profile

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/sift/internal/resolver"
)

//go:embed schema.cue
var schemaCUE string

// Profile is a decoded tuning profile.
type Profile struct {
	Identifier resolver.IdentifierHeuristic

	// SampleRows is zero when the profile does not set it.
	SampleRows int
}

// Default returns the profile used when none is configured.
func Default() Profile {
	return Profile{Identifier: resolver.DefaultIdentifierHeuristic()}
}

// Load reads and decodes the profile at path.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes profile source. filename is used in error positions.
func Parse(data []byte, filename string) (Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Profile{}, fmt.Errorf("compile profile schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %s", filename, details(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Profile")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %s", filename, details(err))
	}

	p := Default()

	markers := unified.LookupPath(cue.ParsePath("identifier.markers"))
	if markers.Exists() {
		var list []string
		if err := markers.Decode(&list); err != nil {
			return Profile{}, fmt.Errorf("profile %s: identifier.markers: %w", filename, err)
		}
		p.Identifier.NameMarkers = list
	}

	fraction := unified.LookupPath(cue.ParsePath("identifier.min_unique_fraction"))
	if fraction.Exists() {
		f, err := fraction.Float64()
		if err != nil {
			return Profile{}, fmt.Errorf("profile %s: identifier.min_unique_fraction: %w", filename, err)
		}
		p.Identifier.MinUniqueFraction = f
	}

	sample := unified.LookupPath(cue.ParsePath("sample_rows"))
	if sample.Exists() {
		n, err := sample.Int64()
		if err != nil {
			return Profile{}, fmt.Errorf("profile %s: sample_rows: %w", filename, err)
		}
		p.SampleRows = int(n)
	}

	return p, nil
}

func details(err error) string {
	return cueerrors.Details(err, nil)
}
