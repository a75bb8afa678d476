package strategy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ocppauth/core/pkg/authcache"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/protocol"
)

// RemoteAuthStrategy is priority-2 in the pipeline: an availability probe
// followed by a timeout-raced remote authorize call (spec §4.7).
type RemoteAuthStrategy struct {
	cfg      func() authconfig.Config
	adapters map[authmodel.OCPPVersion]protocol.Adapter
	cache    authcache.Store
	now      func() time.Time

	totalRequests, successfulRemoteAuth, failedRemoteAuth int64
	timeoutErrors, networkErrors                          int64

	avgMu      sync.Mutex
	avgMs      float64
	avgSamples int64
}

// NewRemoteAuthStrategy builds a RemoteAuthStrategy with one adapter per
// supported OCPP version.
func NewRemoteAuthStrategy(cfg func() authconfig.Config, adapters map[authmodel.OCPPVersion]protocol.Adapter, cache authcache.Store) *RemoteAuthStrategy {
	return &RemoteAuthStrategy{cfg: cfg, adapters: adapters, cache: cache, now: time.Now}
}

// Name implements Strategy.
func (*RemoteAuthStrategy) Name() string { return NameRemote }

// Priority implements Strategy.
func (*RemoteAuthStrategy) Priority() int { return 2 }

// CanHandle implements Strategy: applicable iff remote authorization is
// enabled, the station isn't in local-only mode, and an adapter is
// registered for the identifier's OCPP version.
func (s *RemoteAuthStrategy) CanHandle(request authmodel.AuthRequest) bool {
	c := s.cfg()
	if c.LocalPreAuthorize || !c.RemoteAuthorization {
		return false
	}
	_, ok := s.adapters[request.Identifier.OCPPVersion]
	return ok
}

// Authenticate implements Strategy.
func (s *RemoteAuthStrategy) Authenticate(ctx context.Context, request authmodel.AuthRequest) Outcome {
	atomic.AddInt64(&s.totalRequests, 1)
	c := s.cfg()

	adapter, ok := s.adapters[request.Identifier.OCPPVersion]
	if !ok {
		return Skip()
	}

	timeout := time.Duration(c.AuthorizationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	probeCtx, probeCancel := context.WithTimeout(ctx, timeout/2)
	available := adapter.IsRemoteAvailable(probeCtx)
	probeCancel()
	if !available {
		return Skip()
	}

	start := s.now()
	callCtx, callCancel := context.WithTimeout(ctx, timeout)
	defer callCancel()

	type callOutcome struct {
		result authmodel.AuthorizationResult
		err    error
	}
	resultCh := make(chan callOutcome, 1)
	go func() {
		result, err := adapter.AuthorizeRemote(callCtx, request.Identifier, request.ConnectorID, request.TransactionID)
		resultCh <- callOutcome{result, err}
	}()

	select {
	case <-callCtx.Done():
		atomic.AddInt64(&s.timeoutErrors, 1)
		atomic.AddInt64(&s.failedRemoteAuth, 1)
		return Failed(authcoreerr.New(authcoreerr.Timeout, "remote authorize timed out after %s", timeout))
	case out := <-resultCh:
		responseTime := s.now().Sub(start)
		if out.err != nil {
			atomic.AddInt64(&s.networkErrors, 1)
			atomic.AddInt64(&s.failedRemoteAuth, 1)
			return Failed(authcoreerr.Wrap(authcoreerr.NetworkError, out.err, "remote authorize call failed"))
		}

		atomic.AddInt64(&s.successfulRemoteAuth, 1)
		s.recordResponseTime(responseTime)

		result := out.result
		result.Method = authmodel.MethodRemoteAuthorization
		result = result.WithAdditionalInfo("responseTimeMs", fmt.Sprintf("%d", responseTime.Milliseconds()))

		if result.Status == authmodel.StatusAccepted && s.cache != nil {
			ttl := result.CacheTTL
			if ttl <= 0 {
				ttl = c.AuthorizationCacheLifetime
			}
			if ttl <= 0 {
				ttl = 300
			}
			s.cache.Set(request.Identifier.Value, result, &ttl)
		}
		return Decided(result)
	}
}

// recordResponseTime folds d into the running average response time.
func (s *RemoteAuthStrategy) recordResponseTime(d time.Duration) {
	s.avgMu.Lock()
	defer s.avgMu.Unlock()
	s.avgSamples++
	s.avgMs += (float64(d.Milliseconds()) - s.avgMs) / float64(s.avgSamples)
}

// GetStats implements Strategy.
func (s *RemoteAuthStrategy) GetStats() Stats {
	s.avgMu.Lock()
	avg := s.avgMs
	s.avgMu.Unlock()
	return Stats{
		TotalRequests:     atomic.LoadInt64(&s.totalRequests),
		SuccessfulAuth:    atomic.LoadInt64(&s.successfulRemoteAuth),
		FailedAuth:        atomic.LoadInt64(&s.failedRemoteAuth),
		TimeoutErrors:     atomic.LoadInt64(&s.timeoutErrors),
		NetworkErrors:     atomic.LoadInt64(&s.networkErrors),
		AvgResponseTimeMs: avg,
	}
}

var _ Strategy = (*RemoteAuthStrategy)(nil)
