package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNodeJSON(t *testing.T) {
	tests := []struct {
		yaml string
		want string
	}{
		{`{b: 1, a: 2}`, `{"b":1,"a":2}`},
		{`{x: 0x10, y: 1.50, z: -3}`, `{"x":16,"y":1.5,"z":-3}`},
		{`{s: "30", t: yes, u: true, v: ~}`, `{"s":"30","t":"yes","u":true,"v":null}`},
		{`{ref: $Age, list: [1, two]}`, `{"ref":"$Age","list":[1,"two"]}`},
		{"base: &b {gt: 1}\ncopy: *b", `{"base":{"gt":1},"copy":{"gt":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.yaml, func(t *testing.T) {
			var n yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &n))

			got, err := nodeJSON(&n)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNodeJSON_NonFinite(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`{a: .inf}`), &n))

	_, err := nodeJSON(&n)
	assert.ErrorContains(t, err, "no JSON form")
}
