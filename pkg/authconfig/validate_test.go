package authconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultConfigIsValidWithNoWarnings(t *testing.T) {
	t.Parallel()

	result, err := Validate(Default())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestValidate_FatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "non-positive authorization timeout",
			cfg:  withField(Default(), func(c *Config) { c.AuthorizationTimeout = 0 }),
		},
		{
			name: "negative authorization timeout",
			cfg:  withField(Default(), func(c *Config) { c.AuthorizationTimeout = -1 }),
		},
		{
			name: "cache enabled with non-positive lifetime",
			cfg:  withField(Default(), func(c *Config) { c.AuthorizationCacheLifetime = 0 }),
		},
		{
			name: "non-positive max cache entries",
			cfg:  withField(Default(), func(c *Config) { c.MaxCacheEntries = 0 }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestValidate_CacheDisabledToleratesNonPositiveLifetime(t *testing.T) {
	t.Parallel()

	cfg := withField(Default(), func(c *Config) {
		c.AuthorizationCacheEnabled = false
		c.AuthorizationCacheLifetime = 0
	})

	_, err := Validate(cfg)
	require.NoError(t, err)
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         Config
		wantField   string
	}{
		{
			name:      "cache lifetime out of recommended range",
			cfg:       withField(Default(), func(c *Config) { c.AuthorizationCacheLifetime = 10 }),
			wantField: "authorizationCacheLifetime",
		},
		{
			name:      "cache size below recommended minimum",
			cfg:       withField(Default(), func(c *Config) { c.MaxCacheEntries = 5 }),
			wantField: "maxCacheEntries",
		},
		{
			name:      "timeout out of recommended range",
			cfg:       withField(Default(), func(c *Config) { c.AuthorizationTimeout = 120 }),
			wantField: "authorizationTimeout",
		},
		{
			name: "allow offline for unknown id without offline enabled",
			cfg: withField(Default(), func(c *Config) {
				c.AllowOfflineTxForUnknownID = true
				c.OfflineAuthorizationEnabled = false
			}),
			wantField: "allowOfflineTxForUnknownId",
		},
		{
			name: "no authorization method enabled",
			cfg: withField(Default(), func(c *Config) {
				c.LocalAuthListEnabled = false
				c.AuthorizationCacheEnabled = false
				c.OfflineAuthorizationEnabled = false
				c.RemoteAuthorization = false
				c.CertificateAuthEnabled = false
			}),
			wantField: "(none)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := Validate(tt.cfg)
			require.NoError(t, err)
			require.NotEmpty(t, result.Warnings)

			found := false
			for _, w := range result.Warnings {
				if w.Field == tt.wantField {
					found = true
				}
			}
			assert.True(t, found, "expected a warning for field %q, got %+v", tt.wantField, result.Warnings)
		})
	}
}

func withField(cfg Config, mutate func(*Config)) Config {
	mutate(&cfg)
	return cfg
}
