// Package harness runs filter resolution scenarios from YAML files.
//
// # Scenario Format
//
//	name: sales_above_average
//	description: "Sales staff earning more than the Sales average"
//	dataset:
//	  columns: [Name, Department, Salary]
//	  rows:
//	    - [Ann, Sales, 40000]
//	    - [Cid, Sales, 60000]
//	spec:
//	  Department: sales
//	  Salary: {gt: average}
//	expect:
//	  rows: 1
//	  values:
//	    Name: [Cid]
//	  warnings: []
//
// The dataset is either inline (columns and rows) or a file path relative
// to the scenario file. The specification is a YAML mapping, a JSON string,
// or extracted from a model response given as response. A scenario may ask
// a direct math question instead of, or in addition to, resolving a spec.
//
// # Expectations
//
//   - rows: number of rows after resolution
//   - values: exact kept values of a column, compared by display string
//   - warnings: one substring per warning, in order; [] asserts none
//   - answer: the rendered math answer; "" asserts the question is not one
//
// # Deterministic Testing
//
// Each run is self-contained, and RunWithGolden snapshots the canonical
// specification, its hash, the kept rows and the warnings into
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
