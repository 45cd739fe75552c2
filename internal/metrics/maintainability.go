package metrics

import (
	"fmt"
	"math"
)

// ComputationError reports an arithmetic step that produced a non-finite value.
// It never leaves this package's callers: the scorer normalizes it to 0.
type ComputationError struct {
	Step  string
	Value float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation %s produced non-finite value %v", e.Step, e.Value)
}

// MaintainabilityIndex scores a unit on a 0-100 scale from its cyclomatic
// complexity and source line count. Degenerate input (sloc <= 0) scores 0.
func MaintainabilityIndex(complexity, sloc int) float64 {
	if sloc <= 0 {
		return 0
	}
	return score(float64(max(complexity, 1)), float64(sloc))
}

// score clamps the index to [0,100]. A non-finite index scores 0.
func score(cc, sloc float64) float64 {
	index, err := maintainability(cc, sloc)
	if err != nil {
		return 0
	}
	return math.Max(0, math.Min(100, index))
}

func maintainability(cc, sloc float64) (float64, error) {
	index := 171 -
		5.2*math.Log10(cc) -
		0.23*sloc -
		16.2*math.Log10(sloc) +
		50*math.Sin(math.Sqrt(2.4*sloc))
	if math.IsNaN(index) || math.IsInf(index, 0) {
		return 0, &ComputationError{Step: "maintainability index", Value: index}
	}
	return index, nil
}

// Ratio divides num by den and reports ok=false when the result is not finite,
// which covers a zero denominator.
func Ratio(num, den int) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	r := float64(num) / float64(den)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}
