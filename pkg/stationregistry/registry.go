// Package stationregistry implements the per-station service registry spec
// §4.10 describes: an explicitly-owned mapping from station id to
// authservice.Service, built and torn down by the calling program rather
// than held as a package-level global (spec §9's "singleton factory →
// explicit registry" redesign note), grounded on the teacher's
// mutex-protected map pattern (pkg/auth/awssts/credentials.go's
// CredentialCache).
package stationregistry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authcache"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/authservice"
	"github.com/ocppauth/core/pkg/certverify"
	"github.com/ocppauth/core/pkg/locallist"
	"github.com/ocppauth/core/pkg/protocol"
	"github.com/ocppauth/core/pkg/strategy"
)

// Collaborators bundles the per-station dependencies GetInstance needs to
// construct a Service: the external collaborators spec §1 names (protocol
// adapters, a local-list store) plus the config a new station starts from.
type Collaborators struct {
	Config   authconfig.Config
	List     locallist.Store
	Adapters map[authmodel.OCPPVersion]protocol.Adapter
	Verifier certverify.Verifier
	Metrics  *authservice.Metrics
}

// Registry is a process-wide, explicitly-owned mapping from station id to
// Service (spec §4.10).
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*authservice.Service
	build     func(stationID string) (Collaborators, error)
}

// New builds an empty Registry. build is invoked by GetInstance on a cache
// miss to obtain the collaborators for a newly seen station; it is the
// construction function spec §9 calls for ("takes all collaborators as
// parameters"), deferring station-specific wiring (which adapters, which
// list store) to the embedding program.
func New(build func(stationID string) (Collaborators, error)) *Registry {
	return &Registry{instances: make(map[string]*authservice.Service), build: build}
}

// GetInstance returns the existing Service for stationID, or builds, wires,
// validates, and registers a new one (spec §4.10).
func (r *Registry) GetInstance(stationID string) (*authservice.Service, error) {
	r.mu.RLock()
	if svc, ok := r.instances[stationID]; ok {
		r.mu.RUnlock()
		return svc, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.instances[stationID]; ok {
		return svc, nil
	}

	collaborators, err := r.build(stationID)
	if err != nil {
		return nil, fmt.Errorf("stationregistry: building collaborators for station %q: %w", stationID, err)
	}

	if _, err := authconfig.Validate(collaborators.Config); err != nil {
		return nil, authcoreerr.Wrap(authcoreerr.ConfigurationError, err, "invalid configuration for station %q", stationID)
	}

	cache := authcache.New(collaborators.Config.MaxCacheEntries, secondsToDuration(collaborators.Config.AuthorizationCacheLifetime))
	svc := authservice.New(collaborators.Config, cache, collaborators.Adapters, collaborators.Metrics)

	verifier := collaborators.Verifier
	if verifier == nil {
		verifier = certverify.NewStubVerifier()
	}

	localStrategy := strategy.NewLocalAuthStrategy(svc.Config, collaborators.List, cache)
	remoteStrategy := strategy.NewRemoteAuthStrategy(svc.Config, collaborators.Adapters, cache)
	certStrategy := strategy.NewCertificateAuthStrategy(svc.Config, verifier)
	svc.AttachRegistry(strategy.NewRegistry(localStrategy, remoteStrategy, certStrategy))

	r.instances[stationID] = svc
	obslog.Infof("stationregistry: initialized service for station %q", stationID)
	return svc, nil
}

// ClearInstance tears down the registered service for stationID, if any.
func (r *Registry) ClearInstance(stationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, stationID)
}

// ClearAllInstances tears down every registered service.
func (r *Registry) ClearAllInstances() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[string]*authservice.Service)
}

// SetInstanceForTesting injects svc directly, bypassing the build function
// passed to New. Intended for test setup.
func (r *Registry) SetInstanceForTesting(stationID string, svc *authservice.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[stationID] = svc
}

// Snapshot lists the currently registered station ids, sorted, for
// operational inspection (SPEC_FULL.md supplemented feature).
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// secondsToDuration converts a configuration field expressed in whole
// seconds to a time.Duration, defaulting to 5 minutes if seconds is
// non-positive (the cache's own internal lifetime floor is enforced by
// authconfig.Validate before GetInstance gets here).
func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}
