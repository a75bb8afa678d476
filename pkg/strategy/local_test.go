package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocppauth/core/pkg/authcache"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/locallist"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLocalAuthStrategy_CanHandle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  authconfig.Config
		want bool
	}{
		{"all disabled", authconfig.Config{}, false},
		{"list enabled", authconfig.Config{LocalAuthListEnabled: true}, true},
		{"cache enabled", authconfig.Config{AuthorizationCacheEnabled: true}, true},
		{"offline enabled", authconfig.Config{OfflineAuthorizationEnabled: true}, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewLocalAuthStrategy(func() authconfig.Config { return tc.cfg }, nil, nil)
			assert.Equal(t, tc.want, s.CanHandle(authmodel.AuthRequest{}))
		})
	}
}

func TestLocalAuthStrategy_ListHit(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	list := locallist.NewMemoryStore()
	list.Put("CARD_A", locallist.Entry{Status: locallist.StatusAccepted, ExpiryDate: &expiry})

	cfg := authconfig.Config{LocalAuthListEnabled: true}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, list, nil)
	s.now = fixedClock(now)

	req := authmodel.AuthRequest{
		Identifier: authmodel.UnifiedIdentifier{Type: authmodel.IdentifierIDTag, Value: "CARD_A", OCPPVersion: authmodel.OCPPV16},
		Context:    authmodel.ContextTransactionStart,
	}
	out := s.Authenticate(context.Background(), req)
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.StatusAccepted, out.Result.Status)
	assert.Equal(t, authmodel.MethodLocalList, out.Result.Method)
	assert.False(t, out.Result.IsOffline)
}

func TestLocalAuthStrategy_ListEntryExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(-time.Hour)

	list := locallist.NewMemoryStore()
	list.Put("CARD_A", locallist.Entry{Status: locallist.StatusAccepted, ExpiryDate: &expiry})

	cfg := authconfig.Config{LocalAuthListEnabled: true}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, list, nil)
	s.now = fixedClock(now)

	req := authmodel.AuthRequest{
		Identifier: authmodel.UnifiedIdentifier{Value: "CARD_A"},
	}
	out := s.Authenticate(context.Background(), req)
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.StatusExpired, out.Result.Status)
}

func TestLocalAuthStrategy_CacheHit(t *testing.T) {
	t.Parallel()
	cache := authcache.New(10, time.Minute)
	cache.Set("CARD_B", authmodel.AuthorizationResult{Status: authmodel.StatusAccepted}, nil)

	cfg := authconfig.Config{AuthorizationCacheEnabled: true}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, nil, cache)

	out := s.Authenticate(context.Background(), authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{Value: "CARD_B"}})
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.MethodCache, out.Result.Method)
}

func TestLocalAuthStrategy_OfflineFallback_TransactionStopAlwaysAccepted(t *testing.T) {
	t.Parallel()
	cfg := authconfig.Config{OfflineAuthorizationEnabled: true}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, nil, nil)

	req := authmodel.AuthRequest{
		Identifier:   authmodel.UnifiedIdentifier{Value: "UNKNOWN"},
		Context:      authmodel.ContextTransactionStop,
		AllowOffline: true,
	}
	out := s.Authenticate(context.Background(), req)
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.StatusAccepted, out.Result.Status)
	assert.True(t, out.Result.IsOffline)
}

func TestLocalAuthStrategy_OfflineFallback_UnknownIDDefaultsToConfiguredStatus(t *testing.T) {
	t.Parallel()
	cfg := authconfig.Config{OfflineAuthorizationEnabled: true, AllowOfflineTxForUnknownID: true, UnknownIDAuthorization: authmodel.StatusInvalid}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, nil, nil)

	req := authmodel.AuthRequest{
		Identifier:   authmodel.UnifiedIdentifier{Value: "UNKNOWN"},
		Context:      authmodel.ContextTransactionStart,
		AllowOffline: true,
	}
	out := s.Authenticate(context.Background(), req)
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.StatusInvalid, out.Result.Status)
	assert.True(t, out.Result.IsOffline)
}

func TestLocalAuthStrategy_NoDecision(t *testing.T) {
	t.Parallel()
	cfg := authconfig.Config{LocalAuthListEnabled: true}
	s := NewLocalAuthStrategy(func() authconfig.Config { return cfg }, locallist.NewMemoryStore(), nil)

	out := s.Authenticate(context.Background(), authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{Value: "MISSING"}})
	assert.True(t, out.NoDecision)
	assert.Nil(t, out.Result)
}
