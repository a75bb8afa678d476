// Package authcoreerr implements the error taxonomy of the authorization
// core: a small, closed set of error kinds shared by every layer so callers
// can branch on Kind rather than on error strings.
package authcoreerr

import "fmt"

// Kind categorizes an error raised anywhere in the authorization core.
type Kind int

// The error kinds from the authorization core's error taxonomy.
const (
	// InternalServer covers unexpected failures with no more specific kind.
	InternalServer Kind = iota
	// ConfigurationError marks an invalid numeric field or unsupported
	// OCPP version discovered at configuration-validate or factory time.
	ConfigurationError
	// InvalidIdentifier marks an empty or malformed identifier value or
	// certificate hash data. Never propagated as an error to authorize
	// callers — translated to an INVALID result instead.
	InvalidIdentifier
	// StrategyError marks an unexpected failure inside a strategy's
	// internals. Swallowed by the pipeline; the next strategy is tried.
	StrategyError
	// CacheError marks a backing-store failure in the auth cache.
	CacheError
	// LocalListError marks a local-list lookup failure.
	LocalListError
	// NetworkError marks an adapter transport failure.
	NetworkError
	// Timeout marks an authorizationTimeout expiry on a remote call.
	Timeout
	// CertificateError marks a certificate parse/verify failure.
	CertificateError
	// AdapterError marks adapter mis-configuration.
	AdapterError
	// SecurityViolation is a critical kind: abort the pipeline.
	SecurityViolation
	// CertificateExpired is a critical kind: abort the pipeline.
	CertificateExpired
	// InvalidCertificateChain is a critical kind: abort the pipeline.
	InvalidCertificateChain
	// CriticalConfigurationError is a critical kind: abort the pipeline.
	CriticalConfigurationError
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InternalServer:
		return "InternalServer"
	case ConfigurationError:
		return "ConfigurationError"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case StrategyError:
		return "StrategyError"
	case CacheError:
		return "CacheError"
	case LocalListError:
		return "LocalListError"
	case NetworkError:
		return "NetworkError"
	case Timeout:
		return "Timeout"
	case CertificateError:
		return "CertificateError"
	case AdapterError:
		return "AdapterError"
	case SecurityViolation:
		return "SecurityViolation"
	case CertificateExpired:
		return "CertificateExpired"
	case InvalidCertificateChain:
		return "InvalidCertificateChain"
	case CriticalConfigurationError:
		return "CriticalConfigurationError"
	default:
		return "Unknown"
	}
}

// Critical reports whether a pipeline encountering this kind must abort
// rather than continue to the next strategy (spec §7, last row).
func (k Kind) Critical() bool {
	switch k {
	case SecurityViolation, CertificateExpired, InvalidCertificateChain, CriticalConfigurationError:
		return true
	default:
		return false
	}
}

// Error is the authorization core's wrapped error type. It carries a Kind
// for programmatic dispatch and an optional cause for %w-style chains.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	if e, ok := err.(*Error); ok {
		ae = e
	} else {
		return false
	}
	return ae.Kind == kind
}

// KindOf extracts the Kind from err, returning (InternalServer, false) if
// err is not an *Error.
func KindOf(err error) (Kind, bool) {
	ae, ok := err.(*Error)
	if !ok {
		return InternalServer, false
	}
	return ae.Kind, true
}
