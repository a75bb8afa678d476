// Package authservice implements the pipeline orchestrator spec §4.9
// describes: it selects applicable strategies in priority order, aggregates
// metrics, and surfaces the public authorize/admin API a station consumes.
package authservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authcache"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/protocol"
	"github.com/ocppauth/core/pkg/strategy"
)

// Service is the per-station authorization orchestrator (spec §4.9). One
// Service instance is owned by exactly one charging station; concurrent
// Authorize calls from many connectors are safe.
type Service struct {
	mu  sync.RWMutex
	cfg authconfig.Config

	registry *strategy.Registry
	cache    authcache.Store
	adapters map[authmodel.OCPPVersion]protocol.Adapter
	metrics  *Metrics

	totalRequests, successfulAuth, failedAuth int64

	avgMu      sync.Mutex
	avgMs      float64
	avgSamples int64

	lastUpdated atomic.Value // time.Time
}

// New builds a Service with the given initial configuration, cache, and
// adapter set. The strategy registry is attached separately via
// AttachRegistry because strategies are constructed with Config as their
// configuration source, which would otherwise be a construction cycle
// (spec §9's "cyclic dependency" redesign note, generalized from
// factory↔strategy to service↔strategy).
func New(cfg authconfig.Config, cache authcache.Store, adapters map[authmodel.OCPPVersion]protocol.Adapter, metrics *Metrics) *Service {
	s := &Service{cfg: cfg, cache: cache, adapters: adapters, metrics: metrics}
	s.lastUpdated.Store(time.Now())
	return s
}

// AttachRegistry sets the strategy pipeline. Must be called exactly once
// before Authorize is used.
func (s *Service) AttachRegistry(registry *strategy.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = registry
}

// Config returns a snapshot of the current configuration. It is the
// function strategies close over as their configuration source, so
// UpdateConfiguration takes effect on the next request without
// reconstructing the pipeline.
func (s *Service) Config() authconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Service) registrySnapshot() *strategy.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// Authorize runs the strategy pipeline in fixed priority order (spec §4.9,
// §8 state machine) and always returns a result: it never surfaces an error
// for the normal decision flow.
func (s *Service) Authorize(ctx context.Context, request authmodel.AuthRequest) authmodel.AuthorizationResult {
	start := time.Now()
	atomic.AddInt64(&s.totalRequests, 1)

	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	reg := s.registrySnapshot()
	var attempted []string
	var lastErr error

	if reg != nil {
		for _, st := range reg.Ordered() {
			if !st.CanHandle(request) {
				continue
			}
			attempted = append(attempted, st.Name())

			out := st.Authenticate(ctx, request)
			if out.Result != nil {
				result := s.enrich(*out.Result, request.RequestID, attempted, start)
				s.recordOutcome(true, time.Since(start))
				s.recordResultMetrics(result)
				return result
			}
			if out.Err != nil {
				lastErr = out.Err
				if kind, ok := authcoreerr.KindOf(out.Err); ok && kind.Critical() {
					obslog.Error("authservice: aborting pipeline on critical error", "strategy", st.Name(), "error", out.Err)
					s.recordOutcome(false, time.Since(start))
					return s.abort(request.RequestID, attempted, start, out.Err)
				}
				continue
			}
			// NoDecision: fall through to the next strategy.
		}
	}

	s.recordOutcome(false, time.Since(start))
	return s.exhausted(request.RequestID, attempted, start, lastErr)
}

func (*Service) enrich(result authmodel.AuthorizationResult, requestID string, attempted []string, start time.Time) authmodel.AuthorizationResult {
	strategyUsed := ""
	if len(attempted) > 0 {
		strategyUsed = attempted[len(attempted)-1]
	}
	result = result.WithAdditionalInfo("requestId", requestID)
	result = result.WithAdditionalInfo("strategyUsed", strategyUsed)
	result = result.WithAdditionalInfo("attemptedStrategies", strings.Join(attempted, ","))
	result = result.WithAdditionalInfo("durationMs", fmt.Sprintf("%d", time.Since(start).Milliseconds()))
	return result
}

func (*Service) abort(requestID string, attempted []string, start time.Time, err error) authmodel.AuthorizationResult {
	return authmodel.AuthorizationResult{
		Status:    authmodel.StatusInvalid,
		Method:    authmodel.MethodLocalList,
		Timestamp: time.Now(),
		AdditionalInfo: map[string]string{
			"requestId":           requestID,
			"attemptedStrategies": strings.Join(attempted, ","),
			"durationMs":          fmt.Sprintf("%d", time.Since(start).Milliseconds()),
			"error":               err.Error(),
			"abortReason":         "critical",
		},
	}
}

func (*Service) exhausted(requestID string, attempted []string, start time.Time, lastErr error) authmodel.AuthorizationResult {
	info := map[string]string{
		"requestId":           requestID,
		"attemptedStrategies": strings.Join(attempted, ","),
		"durationMs":          fmt.Sprintf("%d", time.Since(start).Milliseconds()),
	}
	if lastErr != nil {
		info["error"] = lastErr.Error()
	}
	return authmodel.AuthorizationResult{
		Status:         authmodel.StatusInvalid,
		Method:         authmodel.MethodLocalList,
		Timestamp:      time.Now(),
		AdditionalInfo: info,
	}
}

// AuthorizeWithStrategy bypasses the pipeline and invokes exactly the named
// strategy, failing with a domain error if it is absent or inapplicable
// (spec §4.9 scenario 6).
func (s *Service) AuthorizeWithStrategy(ctx context.Context, name string, request authmodel.AuthRequest) (authmodel.AuthorizationResult, error) {
	reg := s.registrySnapshot()
	if reg == nil {
		return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.StrategyError, "strategy registry not attached")
	}
	st := reg.ByName(name)
	if st == nil || !st.CanHandle(request) {
		return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.StrategyError, "strategy %q is not applicable to this request", name)
	}
	out := st.Authenticate(ctx, request)
	if out.Result != nil {
		return *out.Result, nil
	}
	if out.Err != nil {
		return authmodel.AuthorizationResult{}, out.Err
	}
	return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.StrategyError, "strategy %q produced no decision", name)
}

// IsLocallyAuthorized runs only the local strategy with a synthesized
// TRANSACTION_START request (spec §4.9).
func (s *Service) IsLocallyAuthorized(ctx context.Context, identifier authmodel.UnifiedIdentifier, connectorID *int) (authmodel.AuthorizationResult, bool) {
	reg := s.registrySnapshot()
	if reg == nil {
		return authmodel.AuthorizationResult{}, false
	}
	local := reg.ByName(strategy.NameLocal)
	if local == nil {
		return authmodel.AuthorizationResult{}, false
	}

	request := authmodel.AuthRequest{
		Identifier:   identifier,
		Context:      authmodel.ContextTransactionStart,
		Timestamp:    time.Now(),
		AllowOffline: s.Config().OfflineAuthorizationEnabled,
		ConnectorID:  connectorID,
	}
	if !local.CanHandle(request) {
		return authmodel.AuthorizationResult{}, false
	}
	out := local.Authenticate(ctx, request)
	if out.Result == nil {
		return authmodel.AuthorizationResult{}, false
	}
	return *out.Result, true
}

// IsSupported reports whether any registered strategy can handle a probe
// request for identifier.
func (s *Service) IsSupported(identifier authmodel.UnifiedIdentifier) bool {
	reg := s.registrySnapshot()
	if reg == nil {
		return false
	}
	probe := authmodel.AuthRequest{Identifier: identifier, Context: authmodel.ContextTransactionStart, Timestamp: time.Now()}
	for _, st := range reg.Ordered() {
		if st.CanHandle(probe) {
			return true
		}
	}
	return false
}

// InvalidateCache removes identifier's cached result, if any. Idempotent
// (spec §8 invariant 7).
func (s *Service) InvalidateCache(identifier authmodel.UnifiedIdentifier) {
	if s.cache != nil {
		s.cache.Remove(identifier.Value)
	}
}

// ClearCache empties the cache entirely.
func (s *Service) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// TestConnectivity probes every registered adapter's availability (spec
// §4.9: "delegates to the remote strategy's availability probe across
// adapters"), reported per OCPP version since a station may register more
// than one adapter.
func (s *Service) TestConnectivity(ctx context.Context) map[authmodel.OCPPVersion]bool {
	result := make(map[authmodel.OCPPVersion]bool, len(s.adapters))
	for version, adapter := range s.adapters {
		result[version] = adapter.IsRemoteAvailable(ctx)
	}
	return result
}

// GetConfiguration returns the current configuration.
func (s *Service) GetConfiguration() authconfig.Config {
	return s.Config()
}

// UpdateConfiguration validates newCfg and, only if valid, atomically
// replaces the active configuration (spec §4.9, §5 transactional
// discipline: validate-then-swap, no partial state change on failure).
func (s *Service) UpdateConfiguration(newCfg authconfig.Config) (authconfig.ValidationResult, error) {
	result, err := authconfig.Validate(newCfg)
	if err != nil {
		return result, err
	}
	for _, w := range result.Warnings {
		obslog.Warnf("authservice: configuration warning: %s: %s", w.Field, w.Message)
	}

	s.mu.Lock()
	s.cfg = newCfg
	s.mu.Unlock()
	s.lastUpdated.Store(time.Now())
	return result, nil
}

func (s *Service) recordOutcome(success bool, elapsed time.Duration) {
	if success {
		atomic.AddInt64(&s.successfulAuth, 1)
	} else {
		atomic.AddInt64(&s.failedAuth, 1)
	}
	s.avgMu.Lock()
	s.avgSamples++
	s.avgMs += (float64(elapsed.Milliseconds()) - s.avgMs) / float64(s.avgSamples)
	s.avgMu.Unlock()
}

func (s *Service) recordResultMetrics(result authmodel.AuthorizationResult) {
	if s.metrics != nil {
		s.metrics.RecordDecision(context.Background(), result.Status, result.Method)
	}
}
