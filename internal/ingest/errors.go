package ingest

import "fmt"

// MalformedDateError reports a date cell that is not a recognised day-first
// or ISO date.
type MalformedDateError struct {
	Line  int
	Value string
}

func (e MalformedDateError) Error() string {
	return fmt.Sprintf("line %d: malformed date %q", e.Line, e.Value)
}

// MalformedAmountError reports an amount cell that is not a decimal number.
type MalformedAmountError struct {
	Line  int
	Value string
}

func (e MalformedAmountError) Error() string {
	return fmt.Sprintf("line %d: malformed amount %q", e.Line, e.Value)
}

// MalformedRowError reports a data row with the wrong number of fields.
type MalformedRowError struct {
	Line   int
	Fields int
}

func (e MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: expected 4 fields, got %d", e.Line, e.Fields)
}
