package authconfig

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ocppauth/core/pkg/authmodel"
)

// LoadFile reads a Config from a YAML/JSON/TOML file at path, applying
// Default() for any field the file omits. Only the demo binary and
// embedding processes need this. It is the only library file that imports
// viper, but because it belongs to package authconfig, every package that
// imports authconfig also depends on viper at build time.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	def := Default()
	v.SetDefault("localAuthListEnabled", def.LocalAuthListEnabled)
	v.SetDefault("localPreAuthorize", def.LocalPreAuthorize)
	v.SetDefault("authorizationCacheEnabled", def.AuthorizationCacheEnabled)
	v.SetDefault("authorizationCacheLifetime", def.AuthorizationCacheLifetime)
	v.SetDefault("maxCacheEntries", def.MaxCacheEntries)
	v.SetDefault("authorizationTimeout", def.AuthorizationTimeout)
	v.SetDefault("offlineAuthorizationEnabled", def.OfflineAuthorizationEnabled)
	v.SetDefault("allowOfflineTxForUnknownId", def.AllowOfflineTxForUnknownID)
	v.SetDefault("unknownIdAuthorization", string(def.UnknownIDAuthorization))
	v.SetDefault("remoteAuthorization", def.RemoteAuthorization)
	v.SetDefault("certificateAuthEnabled", def.CertificateAuthEnabled)
	v.SetDefault("certificateValidationStrict", def.CertificateValidationStrict)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading authorization config from %s: %w", path, err)
	}

	return Config{
		LocalAuthListEnabled:        v.GetBool("localAuthListEnabled"),
		LocalPreAuthorize:           v.GetBool("localPreAuthorize"),
		AuthorizationCacheEnabled:   v.GetBool("authorizationCacheEnabled"),
		AuthorizationCacheLifetime:  v.GetInt("authorizationCacheLifetime"),
		MaxCacheEntries:             v.GetInt("maxCacheEntries"),
		AuthorizationTimeout:        v.GetInt("authorizationTimeout"),
		OfflineAuthorizationEnabled: v.GetBool("offlineAuthorizationEnabled"),
		AllowOfflineTxForUnknownID:  v.GetBool("allowOfflineTxForUnknownId"),
		UnknownIDAuthorization:      authmodel.AuthorizationStatus(v.GetString("unknownIdAuthorization")),
		RemoteAuthorization:         v.GetBool("remoteAuthorization"),
		CertificateAuthEnabled:      v.GetBool("certificateAuthEnabled"),
		CertificateValidationStrict: v.GetBool("certificateValidationStrict"),
	}, nil
}
