package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	files := []string{
		"testdata/scenarios/01_sales_above_average.yaml",
		"testdata/scenarios/02_identifier_fallback.yaml",
		"testdata/scenarios/03_response_extraction.yaml",
	}

	for _, f := range files {
		s, err := LoadScenario(f)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Marshal(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/04_math_question.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)

	data, err := NewSnapshot("math", result).Marshal()
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, `"spec"`)
	assert.NotContains(t, out, `"spec_hash"`)
	assert.Contains(t, out, `"answer": "The **mean** of `+"`Age`"+` is **40.00**."`)
	assert.Contains(t, out, `"rows_out": 4`)
}
