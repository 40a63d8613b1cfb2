package source

import "fmt"

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	// ErrorMissingCredential means a required secret was absent at the
	// moment the adapter was invoked.
	ErrorMissingCredential ErrorKind = "missing_credential"

	// ErrorServiceUnavailable means a remote call failed or returned a
	// non-success response.
	ErrorServiceUnavailable ErrorKind = "service_unavailable"

	// ErrorDataUnavailable means the store was reachable but the query
	// failed or returned nothing meaningful.
	ErrorDataUnavailable ErrorKind = "data_unavailable"

	// ErrorTimeout means the adapter exceeded its budget.
	ErrorTimeout ErrorKind = "timeout"
)

// AdapterError is the structured error produced at an adapter boundary.
type AdapterError struct {
	Component string
	Op        string
	Kind      ErrorKind
	Message   string
	Err       error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Op, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func NewAdapterError(component, op string, kind ErrorKind, message string, err error) *AdapterError {
	return &AdapterError{
		Component: component,
		Op:        op,
		Kind:      kind,
		Message:   message,
		Err:       err,
	}
}
