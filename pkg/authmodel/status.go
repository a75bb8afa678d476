package authmodel

import (
	"time"

	"github.com/ocppauth/core/pkg/authcoreerr"
)

// AuthorizationStatus is the unified decision status.
type AuthorizationStatus string

// The unified authorization statuses.
const (
	StatusAccepted           AuthorizationStatus = "ACCEPTED"
	StatusBlocked            AuthorizationStatus = "BLOCKED"
	StatusConcurrentTx       AuthorizationStatus = "CONCURRENT_TX"
	StatusExpired            AuthorizationStatus = "EXPIRED"
	StatusInvalid            AuthorizationStatus = "INVALID"
	StatusNotAtThisLocation  AuthorizationStatus = "NOT_AT_THIS_LOCATION"
	StatusNotAtThisTime      AuthorizationStatus = "NOT_AT_THIS_TIME"
	StatusPending            AuthorizationStatus = "PENDING"
	StatusUnknown            AuthorizationStatus = "UNKNOWN"
)

// AuthMethod identifies which strategy family produced a decision.
type AuthMethod string

// The strategy families that can produce a decision.
const (
	MethodLocalList           AuthMethod = "LOCAL_LIST"
	MethodCache               AuthMethod = "CACHE"
	MethodOfflineFallback     AuthMethod = "OFFLINE_FALLBACK"
	MethodRemoteAuthorization AuthMethod = "REMOTE_AUTHORIZATION"
	MethodCertificateBased    AuthMethod = "CERTIFICATE_BASED"
)

// AuthorizationResult is an immutable authorization decision.
type AuthorizationResult struct {
	Status          AuthorizationStatus
	Method          AuthMethod
	Timestamp       time.Time
	IsOffline       bool
	ExpiryDate      *time.Time
	ParentID        string
	GroupID         string
	CacheTTL        int // seconds; 0 means "not specified"
	AdditionalInfo  map[string]string
	PersonalMessage string
}

// Validate checks the invariant from spec §3: if Status is ACCEPTED and
// ExpiryDate is present, ExpiryDate must be strictly after Timestamp.
func (r *AuthorizationResult) Validate() error {
	if r.Status == StatusAccepted && r.ExpiryDate != nil && !r.ExpiryDate.After(r.Timestamp) {
		return authcoreerr.New(authcoreerr.InvalidIdentifier,
			"expiryDate %s is not after timestamp %s for an ACCEPTED result", r.ExpiryDate, r.Timestamp)
	}
	return nil
}

// WithAdditionalInfo returns a shallow copy of r with the given key/value
// merged into AdditionalInfo, leaving r unmodified (AuthorizationResult is
// treated as immutable once returned from a strategy).
func (r AuthorizationResult) WithAdditionalInfo(key, value string) AuthorizationResult {
	merged := make(map[string]string, len(r.AdditionalInfo)+1)
	for k, v := range r.AdditionalInfo {
		merged[k] = v
	}
	merged[key] = value
	r.AdditionalInfo = merged
	return r
}

func errInvalidCertHash(format string, args ...interface{}) error {
	return authcoreerr.New(authcoreerr.InvalidIdentifier, format, args...)
}
