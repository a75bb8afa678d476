package v201

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/oauth2"

	"github.com/ocppauth/core/internal/obslog"
)

// tokenGuard wraps an oauth2.TokenSource and layers a cheap, local
// liveness check on top of it: if the current cached token decodes as a
// JWT, its `exp` claim is checked against the clock with no network round
// trip, giving IsRemoteAvailable a fast path. This mirrors the teacher's
// MonitoredTokenSource, generalized from "mark workload unauthenticated"
// to "answer a health probe".
//
// When New discovers a JWKS endpoint for the configured issuer, jwksCache
// and jwksURL are populated and Healthy verifies the token's signature
// against the cached key set instead of only reading the exp claim
// unverified.
type tokenGuard struct {
	source    oauth2.TokenSource
	now       func() time.Time
	jwksCache *jwk.Cache
	jwksURL   string
}

func newTokenGuard(source oauth2.TokenSource) *tokenGuard {
	return &tokenGuard{source: source, now: time.Now}
}

// Token returns the current access token, refreshing through the
// underlying TokenSource as needed.
func (g *tokenGuard) Token() (*oauth2.Token, error) {
	return g.source.Token()
}

// Healthy reports whether the wrapped token source currently holds a
// non-expired token, without making a network call. A token that cannot be
// parsed as a JWT (e.g. an opaque access token) is treated as healthy as
// long as the oauth2 library itself considers it valid, since this guard
// has no local signal for opaque tokens.
func (g *tokenGuard) Healthy(ctx context.Context) bool {
	tok, err := g.source.Token()
	if err != nil {
		return false
	}
	if !tok.Valid() {
		return false
	}

	if g.jwksCache != nil && g.jwksURL != "" {
		keySet, err := g.jwksCache.Lookup(ctx, g.jwksURL)
		if err != nil {
			obslog.DebugCtx(ctx, "v201 adapter: JWKS lookup failed, falling back to unverified exp check", "jwksURL", g.jwksURL, "error", err)
		} else {
			if _, err := jwt.Parse([]byte(tok.AccessToken), jwt.WithKeySet(keySet)); err != nil {
				if _, perr := jwt.ParseInsecure([]byte(tok.AccessToken)); perr != nil {
					// Opaque (non-JWT) access token: nothing to verify
					// against the key set.
					return true
				}
				obslog.DebugCtx(ctx, "v201 adapter: token signature/claims verification failed", "error", err)
				return false
			}
			return true
		}
	}

	parsed, err := jwt.ParseInsecure([]byte(tok.AccessToken))
	if err != nil {
		// Opaque (non-JWT) access token: defer entirely to oauth2's own
		// expiry bookkeeping above.
		return true
	}

	exp := parsed.Expiration()
	if exp.IsZero() {
		return true
	}
	if g.now().After(exp) {
		obslog.DebugCtx(ctx, "v201 adapter: local token expiry check failed", "exp", exp)
		return false
	}
	return true
}
