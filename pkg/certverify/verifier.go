// Package certverify defines the pluggable certificate verification
// capability spec §4.8 and Open Question §9(a) call for: a structural
// check lives in the certificate strategy itself, and the *semantic*
// accept/reject decision is delegated to a Verifier.
package certverify

import (
	"context"
	"time"

	"github.com/ocppauth/core/pkg/authmodel"
)

// Decision is the outcome of a verifier's policy evaluation.
type Decision struct {
	Accepted   bool
	ExpiryDate *time.Time
	Reason     string
}

// Verifier evaluates a structurally-valid CertificateHashData against a
// trust policy. It never sees malformed input: the certificate strategy
// runs the structural check from spec §4.8 step 1 before calling Verify.
type Verifier interface {
	Verify(ctx context.Context, hash authmodel.CertificateHashData, strict bool) (Decision, error)
}
