package authconfig

import "github.com/ocppauth/core/pkg/authcoreerr"

// Validate checks cfg's fatal constraints and returns the set of advisory
// warnings spec §4.2 defines. A non-nil error means cfg MUST be rejected;
// the ValidationResult is only meaningful when err is nil.
func Validate(cfg Config) (ValidationResult, error) {
	if cfg.AuthorizationTimeout <= 0 {
		return ValidationResult{}, authcoreerr.New(authcoreerr.ConfigurationError,
			"authorizationTimeout must be a positive integer, got %d", cfg.AuthorizationTimeout)
	}

	if cfg.AuthorizationCacheEnabled && cfg.AuthorizationCacheLifetime <= 0 {
		return ValidationResult{}, authcoreerr.New(authcoreerr.ConfigurationError,
			"authorizationCacheLifetime must be a positive integer when the cache is enabled, got %d", cfg.AuthorizationCacheLifetime)
	}

	if cfg.MaxCacheEntries <= 0 {
		return ValidationResult{}, authcoreerr.New(authcoreerr.ConfigurationError,
			"maxCacheEntries must be a positive integer, got %d", cfg.MaxCacheEntries)
	}

	var warnings []ValidationWarning

	if cfg.AuthorizationCacheEnabled {
		if cfg.AuthorizationCacheLifetime < 60 || cfg.AuthorizationCacheLifetime > 86400 {
			warnings = append(warnings, ValidationWarning{
				Field:   "authorizationCacheLifetime",
				Message: "cache lifetime outside the recommended 60s-86400s range",
			})
		}
	}

	if cfg.MaxCacheEntries < 10 {
		warnings = append(warnings, ValidationWarning{
			Field:   "maxCacheEntries",
			Message: "cache size below 10 entries may thrash under normal traffic",
		})
	}

	if cfg.AuthorizationTimeout < 5 || cfg.AuthorizationTimeout > 60 {
		warnings = append(warnings, ValidationWarning{
			Field:   "authorizationTimeout",
			Message: "timeout outside the recommended 5s-60s range",
		})
	}

	if cfg.AllowOfflineTxForUnknownID && !cfg.OfflineAuthorizationEnabled {
		warnings = append(warnings, ValidationWarning{
			Field:   "allowOfflineTxForUnknownId",
			Message: "has no effect while offlineAuthorizationEnabled is false",
		})
	}

	if !cfg.LocalAuthListEnabled && !cfg.AuthorizationCacheEnabled &&
		!cfg.OfflineAuthorizationEnabled && !cfg.RemoteAuthorization && !cfg.CertificateAuthEnabled {
		warnings = append(warnings, ValidationWarning{
			Field:   "(none)",
			Message: "no authorization method is enabled; every request will be synthesized INVALID",
		})
	}

	return ValidationResult{Warnings: warnings}, nil
}
