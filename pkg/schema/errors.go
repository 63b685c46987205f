package schema

import "fmt"

// ValidationError represents a single manifest validation failure.
type ValidationError struct {
	State  string // Name of the offending state entry, empty for manifest-level failures
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.State == "" {
		return e.Reason
	}
	return fmt.Sprintf("state %q: %s", e.State, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
