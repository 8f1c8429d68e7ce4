package extractor

import "errors"

// Error kinds surfaced to callers. Every failure of an invocation wraps exactly one of
// these so the handler can classify it with errors.Is.
var (
	// ErrMalformedInput means the inbound event could not yield a prompt.
	ErrMalformedInput = errors.New("malformed input")

	// ErrServiceUnavailable means the completion service call itself failed.
	ErrServiceUnavailable = errors.New("completion service unavailable")

	// ErrSchemaViolation means the service answered but not in a usable shape.
	ErrSchemaViolation = errors.New("schema violation")
)

// Kind names used in error responses.
const (
	KindMalformedInput     = "MalformedInputError"
	KindServiceUnavailable = "ServiceUnavailableError"
	KindSchemaViolation    = "SchemaViolationError"
	KindInternal           = "InternalError"
)

// KindOf returns the error kind tag for err.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrSchemaViolation):
		return KindSchemaViolation
	default:
		return KindInternal
	}
}
