package rentalwindow

import (
	"fmt"
	"strings"
)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError carries every constraint a request violated, so a form can show them all at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.String())
	}
	return fmt.Sprintf("invalid rental request: %d violation(s): [%s]", len(e.Violations), strings.Join(messages, "; "))
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// PreconditionError reports a malformed booking set handed in by the caller.
type PreconditionError struct {
	ResourceID string
	Index      int
	Reason     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("malformed booking set for resource %q at index %d: %s", e.ResourceID, e.Index, e.Reason)
}
