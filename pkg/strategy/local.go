package strategy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authcache"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/locallist"
)

// localListStatusFamilies maps each recognized local-list entry status to
// the unified status family it belongs to (spec §4.4).
var localListStatusFamilies = map[locallist.EntryStatus]authmodel.AuthorizationStatus{
	locallist.StatusAccepted:     authmodel.StatusAccepted,
	locallist.StatusAuthorized:   authmodel.StatusAccepted,
	locallist.StatusValid:        authmodel.StatusAccepted,
	locallist.StatusBlocked:      authmodel.StatusBlocked,
	locallist.StatusDisabled:     authmodel.StatusBlocked,
	locallist.StatusConcurrent:   authmodel.StatusConcurrentTx,
	locallist.StatusConcurrentTx: authmodel.StatusConcurrentTx,
	locallist.StatusExpired:      authmodel.StatusExpired,
	locallist.StatusInvalid:      authmodel.StatusInvalid,
	locallist.StatusUnauthorized: authmodel.StatusInvalid,
}

// LocalAuthStrategy is priority-1 in the pipeline: local list, then cache,
// then an offline fallback (spec §4.6).
type LocalAuthStrategy struct {
	cfg   func() authconfig.Config
	list  locallist.Store
	cache authcache.Store
	now   func() time.Time

	totalRequests, successfulAuth, failedAuth int64
}

// NewLocalAuthStrategy builds a LocalAuthStrategy. cfg is called on every
// CanHandle/Authenticate invocation so configuration updates (spec §4.9
// updateConfiguration) take effect without reconstructing the strategy.
func NewLocalAuthStrategy(cfg func() authconfig.Config, list locallist.Store, cache authcache.Store) *LocalAuthStrategy {
	return &LocalAuthStrategy{cfg: cfg, list: list, cache: cache, now: time.Now}
}

// Name implements Strategy.
func (*LocalAuthStrategy) Name() string { return NameLocal }

// Priority implements Strategy.
func (*LocalAuthStrategy) Priority() int { return 1 }

// CanHandle implements Strategy: applicable iff local list, cache, or
// offline fallback is enabled.
func (s *LocalAuthStrategy) CanHandle(_ authmodel.AuthRequest) bool {
	c := s.cfg()
	return c.LocalAuthListEnabled || c.AuthorizationCacheEnabled || c.OfflineAuthorizationEnabled
}

// Authenticate implements Strategy.
func (s *LocalAuthStrategy) Authenticate(_ context.Context, request authmodel.AuthRequest) Outcome {
	atomic.AddInt64(&s.totalRequests, 1)
	c := s.cfg()

	if c.LocalAuthListEnabled && s.list != nil {
		entry, found, err := s.list.GetEntry(request.Identifier.Value)
		if err != nil {
			atomic.AddInt64(&s.failedAuth, 1)
			return Failed(authcoreerr.Wrap(authcoreerr.LocalListError, err, "local list lookup failed for %q", request.Identifier.Value))
		}
		if found {
			if entry.ExpiryDate != nil && !entry.ExpiryDate.After(s.now()) {
				atomic.AddInt64(&s.successfulAuth, 1)
				return Decided(authmodel.AuthorizationResult{
					Status:    authmodel.StatusExpired,
					Method:    authmodel.MethodLocalList,
					Timestamp: s.now(),
					ParentID:  entry.ParentID,
				})
			}
			status, known := localListStatusFamilies[entry.Status]
			if !known {
				obslog.Warnf("strategy/local: unrecognized local list status %q for %q, treating as INVALID", entry.Status, request.Identifier.Value)
				status = authmodel.StatusInvalid
			}
			atomic.AddInt64(&s.successfulAuth, 1)
			return Decided(authmodel.AuthorizationResult{
				Status:     status,
				Method:     authmodel.MethodLocalList,
				Timestamp:  s.now(),
				ExpiryDate: entry.ExpiryDate,
				ParentID:   entry.ParentID,
			})
		}
	}

	if c.AuthorizationCacheEnabled && s.cache != nil {
		if result, ok := s.cache.Get(request.Identifier.Value); ok {
			result.Method = authmodel.MethodCache
			atomic.AddInt64(&s.successfulAuth, 1)
			return Decided(result)
		}
	}

	if c.OfflineAuthorizationEnabled && request.AllowOffline {
		if request.Context == authmodel.ContextTransactionStop {
			atomic.AddInt64(&s.successfulAuth, 1)
			return Decided(authmodel.AuthorizationResult{
				Status:    authmodel.StatusAccepted,
				Method:    authmodel.MethodOfflineFallback,
				Timestamp: s.now(),
				IsOffline: true,
			})
		}
		if c.AllowOfflineTxForUnknownID {
			atomic.AddInt64(&s.successfulAuth, 1)
			return Decided(authmodel.AuthorizationResult{
				Status:    c.UnknownIDAuthorization,
				Method:    authmodel.MethodOfflineFallback,
				Timestamp: s.now(),
				IsOffline: true,
			})
		}
		atomic.AddInt64(&s.successfulAuth, 1)
		return Decided(authmodel.AuthorizationResult{
			Status:    authmodel.StatusInvalid,
			Method:    authmodel.MethodOfflineFallback,
			Timestamp: s.now(),
			IsOffline: true,
		})
	}

	return Skip()
}

// GetStats implements Strategy.
func (s *LocalAuthStrategy) GetStats() Stats {
	return Stats{
		TotalRequests:  atomic.LoadInt64(&s.totalRequests),
		SuccessfulAuth: atomic.LoadInt64(&s.successfulAuth),
		FailedAuth:     atomic.LoadInt64(&s.failedAuth),
	}
}

var _ Strategy = (*LocalAuthStrategy)(nil)
