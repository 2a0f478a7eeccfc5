// internal/errors/errors.go
package errors

import "fmt"

// ValidationError is returned when the client-supplied input is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError is returned when the registry has no record of the package.
type NotFoundError struct {
	Package string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %q not found on npm", e.Package)
}

// UpstreamError is returned when the registry lookup fails for any reason other
// than a missing package. The cause is meant for logs, not for clients.
type UpstreamError struct {
	Package string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("registry lookup for %q failed: %v", e.Package, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
