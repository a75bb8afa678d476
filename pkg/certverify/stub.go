package certverify

import (
	"context"
	"strings"
	"time"

	"github.com/ocppauth/core/pkg/authmodel"
)

// testSerials is the whitelist of serials the stub always accepts,
// regardless of strict mode (spec §4.8 step 2).
var testSerials = map[string]bool{
	"TEST_CERT_001": true,
	"TEST_CERT_002": true,
	"DEMO_SERIAL":   true,
}

// StubVerifier is the default, non-production certificate verifier spec
// §4.8/§9(a) describes: it rejects obviously-bad serials, accepts a
// whitelist of test serials, fast-accepts well-formed SHA256 lowercase-hex
// triples, and otherwise defers to the strict flag.
type StubVerifier struct {
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewStubVerifier builds a StubVerifier with the real clock.
func NewStubVerifier() *StubVerifier {
	return &StubVerifier{Now: time.Now}
}

// Verify implements Verifier.
func (v *StubVerifier) Verify(_ context.Context, hash authmodel.CertificateHashData, strict bool) (Decision, error) {
	now := v.Now
	if now == nil {
		now = time.Now
	}

	upper := strings.ToUpper(hash.SerialNumber)
	if strings.Contains(upper, "INVALID") || strings.Contains(upper, "REVOKED") {
		return Decision{Accepted: false, Reason: "serial number flagged invalid or revoked"}, nil
	}

	if testSerials[hash.SerialNumber] {
		expiry := now().AddDate(1, 0, 0)
		return Decision{Accepted: true, ExpiryDate: &expiry, Reason: "test serial whitelist"}, nil
	}

	if hash.IsStrictHex() {
		return Decision{Accepted: true, Reason: "well-formed SHA256 lowercase-hex triple"}, nil
	}

	if strict {
		return Decision{Accepted: false, Reason: "strict validation requires a whitelisted serial or a lowercase-hex SHA256 triple"}, nil
	}
	return Decision{Accepted: true, Reason: "non-strict mode accepts any structurally valid certificate"}, nil
}

var _ Verifier = (*StubVerifier)(nil)
