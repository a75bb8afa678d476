package authservice

import (
	"sync/atomic"
	"time"

	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/strategy"
)

// ServiceStats is the aggregate counter set spec §4.9's getStats exposes.
type ServiceStats struct {
	TotalRequests     int64
	SuccessfulAuth     int64
	FailedAuth         int64
	AvgResponseTimeMs  float64
	CacheHitRate       float64
	LocalUsageRate     float64
	RemoteSuccessRate  float64
	LastUpdated        time.Time
}

// AuthenticationStats is the inventory spec §4.9's getAuthenticationStats
// exposes.
type AuthenticationStats struct {
	AvailableStrategies      []string
	SupportedIdentifierTypes []authmodel.IdentifierType
	OCPPVersions             []authmodel.OCPPVersion
	TotalStrategies          int
}

// GetStats reports the service's aggregate operational counters.
func (s *Service) GetStats() ServiceStats {
	s.avgMu.Lock()
	avg := s.avgMs
	s.avgMu.Unlock()

	stats := ServiceStats{
		TotalRequests:     atomic.LoadInt64(&s.totalRequests),
		SuccessfulAuth:    atomic.LoadInt64(&s.successfulAuth),
		FailedAuth:        atomic.LoadInt64(&s.failedAuth),
		AvgResponseTimeMs: avg,
		LastUpdated:       s.lastUpdated.Load().(time.Time),
	}

	if s.cache != nil {
		cacheStats := s.cache.Stats()
		total := cacheStats.Hits + cacheStats.Misses
		if total > 0 {
			stats.CacheHitRate = float64(cacheStats.Hits) / float64(total)
		}
	}

	reg := s.registrySnapshot()
	if reg != nil {
		if local := reg.ByName(strategy.NameLocal); local != nil {
			localStats := local.GetStats()
			if stats.TotalRequests > 0 {
				stats.LocalUsageRate = float64(localStats.SuccessfulAuth) / float64(stats.TotalRequests)
			}
		}
		if remote := reg.ByName(strategy.NameRemote); remote != nil {
			remoteStats := remote.GetStats()
			attempted := remoteStats.SuccessfulAuth + remoteStats.FailedAuth
			if attempted > 0 {
				stats.RemoteSuccessRate = float64(remoteStats.SuccessfulAuth) / float64(attempted)
			}
		}
	}

	return stats
}

// GetAuthenticationStats reports the service's strategy/identifier
// inventory.
func (s *Service) GetAuthenticationStats() AuthenticationStats {
	reg := s.registrySnapshot()
	if reg == nil {
		return AuthenticationStats{}
	}

	names := make([]string, 0, len(reg.Ordered()))
	for _, st := range reg.Ordered() {
		names = append(names, st.Name())
	}

	ocppVersions := make([]authmodel.OCPPVersion, 0, len(s.adapters))
	for version := range s.adapters {
		ocppVersions = append(ocppVersions, version)
	}

	return AuthenticationStats{
		AvailableStrategies: names,
		SupportedIdentifierTypes: []authmodel.IdentifierType{
			authmodel.IdentifierIDTag, authmodel.IdentifierISO14443, authmodel.IdentifierISO15693,
			authmodel.IdentifierKeyCode, authmodel.IdentifierMACAddress, authmodel.IdentifierEMAID,
			authmodel.IdentifierCentral, authmodel.IdentifierLocal, authmodel.IdentifierNoAuthorization,
			authmodel.IdentifierCertificate, authmodel.IdentifierBiometric, authmodel.IdentifierMobileApp,
		},
		OCPPVersions:    ocppVersions,
		TotalStrategies: len(names),
	}
}
