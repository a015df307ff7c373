package snes

import "fmt"

// A FormatError reports that the input is not a supported indexed image or
// asset file.
type FormatError string

func (e FormatError) Error() string { return "snes: invalid format: " + string(e) }

// A CapacityError reports that a color, tile or partition budget has been
// exceeded, or that there is nothing to fill it with.
type CapacityError struct {
	Resource string
	Count    int
	Max      int
}

func (e *CapacityError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("snes: no %s", e.Resource)
	}
	return fmt.Sprintf("snes: too many %s: %d exceeds the maximum of %d", e.Resource, e.Count, e.Max)
}

// A RangeError reports a bitfield value that cannot be represented in the
// hardware format.
type RangeError struct {
	Field string
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("snes: %s %d out of range 0-%d", e.Field, e.Value, e.Max)
}

// A ConsistencyError reports that the inputs to an operation disagree with
// each other, for example merge parts with different map sizes.
type ConsistencyError string

func (e ConsistencyError) Error() string { return "snes: inconsistent input: " + string(e) }
