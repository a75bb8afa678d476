package strategy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/certverify"
)

// CertificateAuthStrategy is priority-3 in the pipeline: structural
// validation of the certificate hash data followed by delegation to a
// pluggable Verifier (spec §4.8).
type CertificateAuthStrategy struct {
	cfg      func() authconfig.Config
	verifier certverify.Verifier
	now      func() time.Time

	totalRequests, successfulAuth, failedAuth int64
}

// NewCertificateAuthStrategy builds a CertificateAuthStrategy delegating
// semantic accept/reject decisions to verifier.
func NewCertificateAuthStrategy(cfg func() authconfig.Config, verifier certverify.Verifier) *CertificateAuthStrategy {
	return &CertificateAuthStrategy{cfg: cfg, verifier: verifier, now: time.Now}
}

// Name implements Strategy.
func (*CertificateAuthStrategy) Name() string { return NameCertificate }

// Priority implements Strategy.
func (*CertificateAuthStrategy) Priority() int { return 3 }

// CanHandle implements Strategy.
func (s *CertificateAuthStrategy) CanHandle(request authmodel.AuthRequest) bool {
	c := s.cfg()
	if !c.CertificateAuthEnabled || s.verifier == nil {
		return false
	}
	id := request.Identifier
	if !authmodel.IsCertificateBased(id.Type) {
		return false
	}
	if id.OCPPVersion != authmodel.OCPPV20 && id.OCPPVersion != authmodel.OCPPV201 {
		return false
	}
	if id.CertificateHashData == nil {
		return false
	}
	return id.CertificateHashData.Validate() == nil
}

// Authenticate implements Strategy.
func (s *CertificateAuthStrategy) Authenticate(ctx context.Context, request authmodel.AuthRequest) Outcome {
	atomic.AddInt64(&s.totalRequests, 1)
	c := s.cfg()

	hash := request.Identifier.CertificateHashData
	if err := hash.Validate(); err != nil {
		atomic.AddInt64(&s.failedAuth, 1)
		return Decided(authmodel.AuthorizationResult{
			Status:         authmodel.StatusInvalid,
			Method:         authmodel.MethodCertificateBased,
			Timestamp:      s.now(),
			AdditionalInfo: map[string]string{"errorMessage": err.Error()},
		})
	}

	decision, err := s.verifier.Verify(ctx, *hash, c.CertificateValidationStrict)
	if err != nil {
		atomic.AddInt64(&s.failedAuth, 1)
		return Failed(authcoreerr.Wrap(authcoreerr.CertificateError, err, "certificate verification failed for serial %q", hash.SerialNumber))
	}

	if !decision.Accepted {
		atomic.AddInt64(&s.failedAuth, 1)
		return Decided(authmodel.AuthorizationResult{
			Status:         authmodel.StatusBlocked,
			Method:         authmodel.MethodCertificateBased,
			Timestamp:      s.now(),
			AdditionalInfo: map[string]string{"errorMessage": decision.Reason},
		})
	}

	atomic.AddInt64(&s.successfulAuth, 1)
	return Decided(authmodel.AuthorizationResult{
		Status:     authmodel.StatusAccepted,
		Method:     authmodel.MethodCertificateBased,
		Timestamp:  s.now(),
		ExpiryDate: decision.ExpiryDate,
	})
}

// GetStats implements Strategy.
func (s *CertificateAuthStrategy) GetStats() Stats {
	return Stats{
		TotalRequests:  atomic.LoadInt64(&s.totalRequests),
		SuccessfulAuth: atomic.LoadInt64(&s.successfulAuth),
		FailedAuth:     atomic.LoadInt64(&s.failedAuth),
	}
}

var _ Strategy = (*CertificateAuthStrategy)(nil)
