package executor

import (
	"fmt"
	"strings"
)

// FieldFillError reports that a declared field could not be filled.
// It names the field, the selector that was driven, and for selects
// the fallback strategies that were attempted, so a reviewer can
// diagnose the failure from the error plus the failure screenshot.
type FieldFillError struct {
	FieldID    string
	Selector   string
	Strategies []string
	Err        error
}

func (e *FieldFillError) Error() string {
	msg := fmt.Sprintf("failed to fill field %q (selector: %s)", e.FieldID, e.Selector)
	if len(e.Strategies) > 0 {
		msg += fmt.Sprintf(", attempted strategies: %s", strings.Join(e.Strategies, ", "))
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *FieldFillError) Unwrap() error {
	return e.Err
}
