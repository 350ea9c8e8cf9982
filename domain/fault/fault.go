// Package fault defines the request fault taxonomy for the dispatch engine.
// Every fault is local to the request that raised it; nothing here carries
// retry semantics.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fault.
type Kind int

const (
	// KindUnknown is the zero value; errors from outside the engine map here.
	KindUnknown Kind = iota

	// KindConfiguration marks a bad or missing service contract at startup.
	// Fatal: the dispatcher does not serve requests.
	KindConfiguration

	// KindNotFound marks a request for an operation that is not registered.
	KindNotFound

	// KindInvalidArgument marks a supplied value that cannot be coerced to
	// its declared scalar type, or a parameter schema that declares an
	// unsupported type.
	KindInvalidArgument

	// KindInternal marks a failure inside the invoked operation body. The
	// original cause is retained for diagnostics but not exposed verbatim.
	KindInternal

	// KindEncoding marks a serialization failure: a non-string map key, an
	// unencodable value, or a resource-release failure. It may occur after
	// partial output has been written.
	KindEncoding
)

// String returns the kind's name for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInternal:
		return "internal"
	case KindEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// Fault is a classified error.
type Fault struct {
	kind  Kind
	msg   string
	cause error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.cause != nil && f.msg != "" {
		return f.msg + ": " + f.cause.Error()
	}
	if f.cause != nil {
		return f.cause.Error()
	}
	return f.msg
}

// Unwrap exposes the cause for errors.Is/As chains.
func (f *Fault) Unwrap() error { return f.cause }

// Kind returns the fault's classification.
func (f *Fault) Kind() Kind { return f.kind }

// New creates a fault of the given kind.
func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault of the given kind around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Fault {
	return &Fault{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Configuration creates a startup configuration fault.
func Configuration(format string, args ...any) *Fault {
	return New(KindConfiguration, format, args...)
}

// NotFound creates an operation-not-found fault.
func NotFound(format string, args ...any) *Fault {
	return New(KindNotFound, format, args...)
}

// InvalidArgument creates a coercion fault.
func InvalidArgument(format string, args ...any) *Fault {
	return New(KindInvalidArgument, format, args...)
}

// Internal wraps a failure raised by an operation body.
func Internal(cause error) *Fault {
	return &Fault{kind: KindInternal, msg: "operation failed", cause: cause}
}

// Encoding creates a serialization fault.
func Encoding(format string, args ...any) *Fault {
	return New(KindEncoding, format, args...)
}

// KindOf extracts the kind from an error chain. Errors that are not faults
// report KindUnknown.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.kind
	}
	return KindUnknown
}
