// Package authconfig defines the authorization core's configuration
// structure and its validator (spec §3, §4.2).
package authconfig

import "github.com/ocppauth/core/pkg/authmodel"

// Config is the authorization configuration recognized by the core.
type Config struct {
	LocalAuthListEnabled        bool
	LocalPreAuthorize           bool
	AuthorizationCacheEnabled   bool
	AuthorizationCacheLifetime  int // seconds, > 0
	MaxCacheEntries             int // > 0
	AuthorizationTimeout        int // seconds, > 0
	OfflineAuthorizationEnabled bool
	AllowOfflineTxForUnknownID  bool
	UnknownIDAuthorization      authmodel.AuthorizationStatus
	RemoteAuthorization         bool
	CertificateAuthEnabled      bool
	CertificateValidationStrict bool
}

// Default returns a Config with the documented defaults applied. The cache
// lifetime is set to 300s, the same value RemoteAuthStrategy falls back to
// when neither the result nor the config gives a TTL; unknownIdAuthorization
// defaults to INVALID per spec §3.
func Default() Config {
	return Config{
		LocalAuthListEnabled:        true,
		AuthorizationCacheEnabled:   true,
		AuthorizationCacheLifetime:  300,
		MaxCacheEntries:             10000,
		AuthorizationTimeout:        30,
		OfflineAuthorizationEnabled: false,
		UnknownIDAuthorization:      authmodel.StatusInvalid,
		RemoteAuthorization:         true,
		CertificateAuthEnabled:      false,
		CertificateValidationStrict: false,
	}
}

// ValidationWarning is a non-fatal observation about an otherwise legal
// configuration (spec §4.2).
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidationResult is the outcome of Validate: either an error (fatal) or a
// list of warnings (advisory).
type ValidationResult struct {
	Warnings []ValidationWarning
}
