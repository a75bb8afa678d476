// Package v201 implements the OCPP 2.0.1 protocol adapter: the
// Authorize.req/Authorize.conf wire shapes (spec §6) and translation
// into/out of the unified model (spec §4.1), plus the adapter's own
// OAuth2-authenticated transport to the CSMS.
package v201

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authcoreerr"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authmodel"
)

// idToken is the OCPP 2.0.1 IdTokenType wire object.
type idToken struct {
	IDToken        string            `json:"idToken"`
	Type           string            `json:"type"`
	AdditionalInfo []additionalInfo  `json:"additionalInfo,omitempty"`
}

type additionalInfo struct {
	AdditionalIDToken string `json:"additionalIdToken"`
	Type              string `json:"type"`
}

// certificateHashDataWire is the OCPP 2.0.1 OCSPRequestDataType-adjacent
// wire object carried on Authorize.req when the identifier is
// certificate-based.
type certificateHashDataWire struct {
	HashAlgorithm  string `json:"hashAlgorithm"`
	IssuerNameHash string `json:"issuerNameHash"`
	IssuerKeyHash  string `json:"issuerKeyHash"`
	SerialNumber   string `json:"serialNumber"`
}

type authorizeReq struct {
	IDToken             idToken                    `json:"idToken"`
	CertificateHashData []certificateHashDataWire `json:"certificateHashData,omitempty"`
}

type groupIDToken struct {
	IDToken string `json:"idToken"`
	Type    string `json:"type"`
}

type idTokenInfo struct {
	Status               string        `json:"status"`
	CacheExpiryDateTime   *string       `json:"cacheExpiryDateTime,omitempty"`
	GroupIDToken          *groupIDToken `json:"groupIdToken,omitempty"`
	PersonalMessage       *string       `json:"personalMessage,omitempty"`
}

type authorizeConf struct {
	IDTokenInfo idTokenInfo `json:"idTokenInfo"`
}

// Config configures the v2.0.1 adapter's transport.
type Config struct {
	Endpoint string

	// OAuth2 client-credentials parameters for authenticating the
	// adapter's own calls to the CSMS (SPEC_FULL.md DOMAIN STACK).
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// Issuer, if set, is an OIDC issuer used to discover TokenURL (when
	// TokenURL is empty) and the issuer's JWKS endpoint via the
	// well-known discovery document, rather than requiring both to be
	// configured statically.
	Issuer string
}

// Adapter is the OCPP 2.0.1 protocol adapter.
type Adapter struct {
	cfg    Config
	client *http.Client
	guard  *tokenGuard
}

// New builds a v2.0.1 adapter. If cfg names OAuth2 credentials, outbound
// Authorize.req calls are authenticated as an OAuth2 client-credentials
// client; otherwise the adapter issues plain, unauthenticated calls
// (useful for tests and for a sandboxed CSMS). If cfg.Issuer is set, the
// token endpoint and JWKS URI are resolved via OIDC discovery for
// whichever of them was left unconfigured, mirroring how the teacher's
// own upstream OIDC client resolves endpoints from a discovery document
// instead of requiring every endpoint to be wired by hand.
func New(ctx context.Context, cfg Config) *Adapter {
	a := &Adapter{cfg: cfg, client: http.DefaultClient}

	tokenURL := cfg.TokenURL
	var jwksURL string
	if cfg.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			obslog.WarnCtx(ctx, "v201 adapter: OIDC discovery failed, falling back to static configuration", "issuer", cfg.Issuer, "error", err)
		} else {
			if tokenURL == "" {
				tokenURL = provider.Endpoint().TokenURL
			}
			var discovery struct {
				JWKSURI string `json:"jwks_uri"`
			}
			if err := provider.Claims(&discovery); err == nil {
				jwksURL = discovery.JWKSURI
			}
		}
	}

	if cfg.ClientID != "" && tokenURL != "" {
		ccCfg := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       cfg.Scopes,
		}
		source := ccCfg.TokenSource(ctx)
		a.guard = newTokenGuard(source)
		a.client = oauth2.NewClient(ctx, source)

		if jwksURL != "" {
			httprcClient := httprc.NewClient(httprc.WithHTTPClient(http.DefaultClient))
			cache, err := jwk.NewCache(ctx, httprcClient)
			if err != nil {
				obslog.WarnCtx(ctx, "v201 adapter: failed to build JWKS cache, token guard will fall back to unverified exp check", "error", err)
			} else if err := cache.Register(ctx, jwksURL); err != nil {
				obslog.WarnCtx(ctx, "v201 adapter: failed to register JWKS URL, token guard will fall back to unverified exp check", "jwksURL", jwksURL, "error", err)
			} else {
				a.guard.jwksCache = cache
				a.guard.jwksURL = jwksURL
			}
		}
	}

	return a
}

// Version implements protocol.Adapter.
func (*Adapter) Version() authmodel.OCPPVersion { return authmodel.OCPPV201 }

// ValidateConfiguration implements protocol.Adapter.
func (a *Adapter) ValidateConfiguration(_ authconfig.Config) bool {
	return a.cfg.Endpoint != ""
}

// IsRemoteAvailable implements protocol.Adapter. When the adapter
// authenticates via OAuth2, the token guard's check runs first and a
// failing check reports unavailable without probing the endpoint. If that
// check passes, or there is no guard, a bounded-retry HEAD probe decides.
func (a *Adapter) IsRemoteAvailable(ctx context.Context) bool {
	if a.guard != nil && !a.guard.Healthy(ctx) {
		return false
	}

	probe := func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.cfg.Endpoint, nil)
		if err != nil {
			return false, backoff.Permanent(err)
		}
		resp, err := a.client.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()
		return resp.StatusCode < 500, nil
	}

	available, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := probe()
		if err != nil {
			return false, err
		}
		return ok, nil
	}, backoff.WithMaxTries(3), backoff.WithBackOff(backoff.NewExponentialBackOff()))
	if err != nil {
		obslog.DebugCtx(ctx, "v201 adapter: availability probe exhausted retries", "error", err)
		return false
	}
	return available
}

// AuthorizeRemote implements protocol.Adapter.
func (a *Adapter) AuthorizeRemote(ctx context.Context, identifier authmodel.UnifiedIdentifier, _ *int, _ *string) (authmodel.AuthorizationResult, error) {
	req := authorizeReq{
		IDToken: idToken{
			IDToken: identifier.Value,
			Type:    string(authmodel.UnifiedTypeToV201Token(identifier.Type)),
		},
	}
	for k, v := range identifier.AdditionalInfo {
		req.IDToken.AdditionalInfo = append(req.IDToken.AdditionalInfo, additionalInfo{AdditionalIDToken: v, Type: k})
	}
	if identifier.CertificateHashData != nil {
		req.CertificateHashData = []certificateHashDataWire{{
			HashAlgorithm:  string(identifier.CertificateHashData.HashAlgorithm),
			IssuerNameHash: identifier.CertificateHashData.IssuerNameHash,
			IssuerKeyHash:  identifier.CertificateHashData.IssuerKeyHash,
			SerialNumber:   identifier.CertificateHashData.SerialNumber,
		}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "encoding Authorize.req")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "building Authorize.req")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.NetworkError, err, "Authorize.req transport failure")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return authmodel.AuthorizationResult{}, authcoreerr.New(authcoreerr.NetworkError,
			"Authorize.req returned unexpected status %d", resp.StatusCode)
	}

	var conf authorizeConf
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return authmodel.AuthorizationResult{}, authcoreerr.Wrap(authcoreerr.AdapterError, err, "decoding Authorize.conf")
	}

	status := authmodel.V201StatusToUnified(authmodel.V201Status(conf.IDTokenInfo.Status))

	result := authmodel.AuthorizationResult{
		Status:    status,
		Timestamp: time.Now(),
	}
	if conf.IDTokenInfo.CacheExpiryDateTime != nil {
		if t, err := time.Parse(time.RFC3339, *conf.IDTokenInfo.CacheExpiryDateTime); err == nil {
			result.ExpiryDate = &t
		}
	}
	if conf.IDTokenInfo.GroupIDToken != nil {
		result.GroupID = conf.IDTokenInfo.GroupIDToken.IDToken
	}
	if conf.IDTokenInfo.PersonalMessage != nil {
		result.PersonalMessage = *conf.IDTokenInfo.PersonalMessage
	}
	return result, nil
}
