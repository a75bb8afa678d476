// Package strategy implements the three pluggable decision producers spec
// §4.6–§4.8 describe — Local, Remote, Certificate — behind a shared
// capability set, grounded on the teacher's Introspector/IntrospectorRegistry
// pair (pkg/auth/token/introspection.go): canHandle decides applicability,
// authenticate decides the outcome, getStats reports counters back to the
// operational surface.
package strategy

import (
	"context"

	"github.com/ocppauth/core/pkg/authmodel"
)

// Outcome is the result of a strategy's authenticate call: exactly one of
// Result, NoDecision, or Err is meaningful, mirroring spec §9's "errors are
// values, not control flow" redesign note.
type Outcome struct {
	Result     *authmodel.AuthorizationResult
	NoDecision bool
	Err        error
}

// Decided builds an Outcome carrying a result.
func Decided(result authmodel.AuthorizationResult) Outcome {
	return Outcome{Result: &result}
}

// Skip builds an Outcome signaling "no decision, try the next strategy".
func Skip() Outcome {
	return Outcome{NoDecision: true}
}

// Failed builds an Outcome carrying a non-critical error.
func Failed(err error) Outcome {
	return Outcome{Err: err}
}

// Stats is the counter set a strategy reports via GetStats. Fields not
// meaningful to a given strategy are left zero.
type Stats struct {
	TotalRequests      int64
	SuccessfulAuth      int64
	FailedAuth          int64
	TimeoutErrors       int64
	NetworkErrors       int64
	AvgResponseTimeMs   float64
}

// Strategy is the capability set spec §9 requires: an interface with
// CanHandle/Authenticate/GetStats plus a Name for registration and
// diagnostics, and a fixed Priority assigned at construction time (lower
// runs first).
type Strategy interface {
	// Name identifies the strategy for authorizeWithStrategy and diagnostics.
	Name() string

	// Priority is this strategy's fixed position in the pipeline; strategies
	// are invoked in ascending priority order.
	Priority() int

	// CanHandle reports whether this strategy is configured and applicable
	// to request.
	CanHandle(request authmodel.AuthRequest) bool

	// Authenticate produces this strategy's decision for request.
	Authenticate(ctx context.Context, request authmodel.AuthRequest) Outcome

	// GetStats reports this strategy's operational counters.
	GetStats() Stats
}

// The fixed strategy names used for registration and authorizeWithStrategy
// lookups.
const (
	NameLocal       = "local"
	NameRemote      = "remote"
	NameCertificate = "certificate"
)
