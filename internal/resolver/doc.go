// Package resolver applies a parsed filter specification to a table.
//
// Resolve walks the specification entries in order. Each entry narrows the
// working table or, when it cannot be applied safely, leaves it untouched
// and adds a warning. Warnings are plain sentences meant for the end user:
//
//	Column 'Agee' not found in dataset.
//	Could not resolve comparison value for 'Age' with raw 'old'.
//	Unsupported operator 'between' for column 'Age'.
//
// Resolve never returns an error and never panics. A panic while applying
// one entry is recovered into an "Error during filtering" warning and the
// pass continues from the last good table.
//
// Aggregates in comparison values ("average", {"max": "$Other"}) are
// computed over the working table as narrowed by the entries before them.
// A reference to an identifier-like column (see IdentifierHeuristic) falls
// back to the mean of the condition's own column, with a warning, because
// the mean of a key column is not a meaningful threshold.
//
// ComputeMathQuery is a separate shortcut that answers direct aggregate
// questions such as "what is the average age" without a specification.
package resolver
