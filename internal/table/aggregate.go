package table

import (
	"math"
	"slices"
)

// Agg names an aggregate over a numeric series.
type Agg int

const (
	AggUnknown Agg = iota
	AggMean
	AggMax
	AggMin
	AggSum
	AggCount
)

// String returns the canonical keyword of the aggregate.
func (a Agg) String() string {
	switch a {
	case AggMean:
		return "mean"
	case AggMax:
		return "max"
	case AggMin:
		return "min"
	case AggSum:
		return "sum"
	case AggCount:
		return "count"
	default:
		return "unknown"
	}
}

// Aggregate computes agg over series, skipping NaN. The second result is
// false when the aggregate is undefined: mean, max and min of a series
// with no numbers, or an unknown aggregate. Sum of such a series is 0.
func Aggregate(agg Agg, series []float64) (float64, bool) {
	var (
		sum   float64
		count int
		lo    = math.Inf(1)
		hi    = math.Inf(-1)
	)
	for _, v := range series {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	switch agg {
	case AggSum:
		return sum, true
	case AggCount:
		return float64(count), true
	}
	if count == 0 {
		return math.NaN(), false
	}
	switch agg {
	case AggMean:
		return sum / float64(count), true
	case AggMax:
		return hi, true
	case AggMin:
		return lo, true
	default:
		return math.NaN(), false
	}
}

// Aggregate computes agg over the numeric coercion of a column.
func (t *Table) Aggregate(name string, agg Agg) (float64, bool) {
	return Aggregate(agg, t.Numeric(name))
}

// Median returns the median of the numbers in series.
func Median(series []float64) (float64, bool) {
	nums := present(series)
	if len(nums) == 0 {
		return math.NaN(), false
	}
	slices.Sort(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return nums[mid], true
	}
	return (nums[mid-1] + nums[mid]) / 2, true
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Undefined for fewer than two numbers.
func StdDev(series []float64) (float64, bool) {
	nums := present(series)
	if len(nums) < 2 {
		return math.NaN(), false
	}
	mean, _ := Aggregate(AggMean, nums)
	var ss float64
	for _, v := range nums {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(nums)-1)), true
}

func present(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
