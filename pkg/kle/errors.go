package kle

import "fmt"

// FormatError reports a structurally invalid serialized layout. Value holds
// the offending element.
type FormatError struct {
	Msg   string
	Value any
}

func (e *FormatError) Error() string {
	if e.Value == nil {
		return "kle: " + e.Msg
	}
	return fmt.Sprintf("kle: %s: %v", e.Msg, e.Value)
}

func formatErr(msg string, v any) error {
	return &FormatError{Msg: msg, Value: v}
}
