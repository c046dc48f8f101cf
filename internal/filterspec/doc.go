// Package filterspec normalises an externally supplied filter
// specification into typed conditions.
//
// A filter specification is a JSON object mapping a column name to a
// condition, usually produced by an LLM after a "QUERY:" delimiter:
//
//	{"Department": "sales", "Age": {"$gt": "average"}, "Salary": {"gt": {"avg": "$Bonus"}}}
//
// Parsing happens once, up front. The raw JSON is turned into the sealed
// Condition and DynamicValue unions so the resolver dispatches on types
// instead of sniffing JSON shapes:
//
//	Condition                  DynamicValue
//	---------                  ------------
//	Match   literal text       Number           numeric literal, numeric string or boolean
//	Compare op + value         SelfAggregate    "average", "max", "min" of own column
//	Invalid unusable shape     ColumnAggregate  {"avg": "$Other"}
//	                           Unresolved       anything else
//
// Parse only fails on malformed JSON or a non-object top level. Every
// semantically odd condition still parses; it becomes Invalid, an
// OpUnknown Compare or an Unresolved value, and the resolver reports it as
// a warning.
//
// Entries keep document order. An operator object with several entries,
// such as {"gt": 10, "lt": 20}, expands into one Compare entry per
// operator on the same column.
package filterspec
