// Package errs holds Tessera's two error vocabularies: OperationError for
// internal infrastructure failures (persistence, cache, webhook I/O), and
// Error for typed domain failures that cross the HTTP boundary with one of
// the codes enumerated in spec.md §7.
package errs

import "fmt"

// OperationError wraps a low-level failure with the operation, component,
// and resource it happened against, so logs read as a sentence instead of
// a bare driver error.
type OperationError struct {
	Operation string
	Component string
	Resource  string
	Cause     error
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("failed to %s", e.Operation)
	if e.Component != "" {
		msg += fmt.Sprintf(", component: %s", e.Component)
	}
	if e.Resource != "" {
		msg += fmt.Sprintf(", resource: %s", e.Resource)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(", cause: %s", e.Cause)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// Op is a convenience constructor.
func Op(operation, component, resource string, cause error) *OperationError {
	return &OperationError{Operation: operation, Component: component, Resource: resource, Cause: cause}
}
