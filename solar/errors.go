package solar

import "fmt"

// ValidationError is returned when a latitude, longitude or altitude is
// constructed from a value outside of its valid range.
type ValidationError struct {
	Field string
	Min   float64
	Max   float64
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between %.1f and %.1f, inclusive, got '%s'", e.Field, e.Min, e.Max, e.Value)
}
