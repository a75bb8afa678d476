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
	"github.com/ocppauth/core/pkg/protocol"
)

// fakeAdapter is a hand-written protocol.Adapter test double.
type fakeAdapter struct {
	version   authmodel.OCPPVersion
	available bool
	result    authmodel.AuthorizationResult
	err       error
	delay     time.Duration
	callCount int
}

func (f *fakeAdapter) Version() authmodel.OCPPVersion { return f.version }

func (*fakeAdapter) ValidateConfiguration(_ authconfig.Config) bool { return true }

func (f *fakeAdapter) IsRemoteAvailable(_ context.Context) bool { return f.available }

func (f *fakeAdapter) AuthorizeRemote(ctx context.Context, _ authmodel.UnifiedIdentifier, _ *int, _ *string) (authmodel.AuthorizationResult, error) {
	f.callCount++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return authmodel.AuthorizationResult{}, ctx.Err()
		}
	}
	return f.result, f.err
}

var _ protocol.Adapter = (*fakeAdapter)(nil)

func TestRemoteAuthStrategy_CanHandle(t *testing.T) {
	t.Parallel()

	adapters := map[authmodel.OCPPVersion]protocol.Adapter{authmodel.OCPPV16: &fakeAdapter{version: authmodel.OCPPV16}}

	testCases := []struct {
		name string
		cfg  authconfig.Config
		req  authmodel.AuthRequest
		want bool
	}{
		{
			name: "adapter present, remote enabled",
			cfg:  authconfig.Config{RemoteAuthorization: true},
			req:  authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}},
			want: true,
		},
		{
			name: "local pre-authorize skips remote",
			cfg:  authconfig.Config{RemoteAuthorization: true, LocalPreAuthorize: true},
			req:  authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}},
			want: false,
		},
		{
			name: "no adapter for version",
			cfg:  authconfig.Config{RemoteAuthorization: true},
			req:  authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV201}},
			want: false,
		},
		{
			name: "remote disabled",
			cfg:  authconfig.Config{},
			req:  authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}},
			want: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewRemoteAuthStrategy(func() authconfig.Config { return tc.cfg }, adapters, nil)
			assert.Equal(t, tc.want, s.CanHandle(tc.req))
		})
	}
}

func TestRemoteAuthStrategy_AcceptedWritesCache(t *testing.T) {
	t.Parallel()
	adapter := &fakeAdapter{
		version:   authmodel.OCPPV16,
		available: true,
		result:    authmodel.AuthorizationResult{Status: authmodel.StatusAccepted, CacheTTL: 60},
	}
	cache := authcache.New(10, time.Minute)
	cfg := authconfig.Config{RemoteAuthorization: true, AuthorizationTimeout: 5}
	s := NewRemoteAuthStrategy(func() authconfig.Config { return cfg },
		map[authmodel.OCPPVersion]protocol.Adapter{authmodel.OCPPV16: adapter}, cache)

	req := authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{Value: "CARD_B", OCPPVersion: authmodel.OCPPV16}}
	out := s.Authenticate(context.Background(), req)
	require.NotNil(t, out.Result)
	assert.Equal(t, authmodel.StatusAccepted, out.Result.Status)
	assert.Equal(t, authmodel.MethodRemoteAuthorization, out.Result.Method)
	assert.Contains(t, out.Result.AdditionalInfo, "responseTimeMs")

	cached, ok := cache.Get("CARD_B")
	require.True(t, ok)
	assert.Equal(t, authmodel.StatusAccepted, cached.Status)
}

func TestRemoteAuthStrategy_Unavailable_NoDecision(t *testing.T) {
	t.Parallel()
	adapter := &fakeAdapter{version: authmodel.OCPPV16, available: false}
	cfg := authconfig.Config{RemoteAuthorization: true, AuthorizationTimeout: 5}
	s := NewRemoteAuthStrategy(func() authconfig.Config { return cfg },
		map[authmodel.OCPPVersion]protocol.Adapter{authmodel.OCPPV16: adapter}, nil)

	out := s.Authenticate(context.Background(), authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}})
	assert.True(t, out.NoDecision)
	assert.Equal(t, 0, adapter.callCount)
}

func TestRemoteAuthStrategy_Timeout(t *testing.T) {
	t.Parallel()
	adapter := &fakeAdapter{version: authmodel.OCPPV16, available: true, delay: 1200 * time.Millisecond}
	cfg := authconfig.Config{RemoteAuthorization: true, AuthorizationTimeout: 1}
	s := NewRemoteAuthStrategy(func() authconfig.Config { return cfg },
		map[authmodel.OCPPVersion]protocol.Adapter{authmodel.OCPPV16: adapter}, nil)
	s.now = time.Now

	out := s.Authenticate(context.Background(), authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}})
	assert.Nil(t, out.Result)
	assert.False(t, out.NoDecision)
	require.Error(t, out.Err)
	stats := s.GetStats()
	assert.Equal(t, int64(1), stats.TimeoutErrors)
}

func TestRemoteAuthStrategy_NetworkError(t *testing.T) {
	t.Parallel()
	adapter := &fakeAdapter{version: authmodel.OCPPV16, available: true, err: assertErr{}}
	cfg := authconfig.Config{RemoteAuthorization: true, AuthorizationTimeout: 5}
	s := NewRemoteAuthStrategy(func() authconfig.Config { return cfg },
		map[authmodel.OCPPVersion]protocol.Adapter{authmodel.OCPPV16: adapter}, nil)

	out := s.Authenticate(context.Background(), authmodel.AuthRequest{Identifier: authmodel.UnifiedIdentifier{OCPPVersion: authmodel.OCPPV16}})
	require.Error(t, out.Err)
	assert.Equal(t, int64(1), s.GetStats().NetworkErrors)
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated transport failure" }
