package authcoreerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Critical(t *testing.T) {
	t.Parallel()

	critical := []Kind{SecurityViolation, CertificateExpired, InvalidCertificateChain, CriticalConfigurationError}
	for _, k := range critical {
		assert.True(t, k.Critical(), "%s should be critical", k)
	}

	nonCritical := []Kind{InternalServer, ConfigurationError, InvalidIdentifier, StrategyError, CacheError, LocalListError, NetworkError, Timeout, CertificateError, AdapterError}
	for _, k := range nonCritical {
		assert.False(t, k.Critical(), "%s should not be critical", k)
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "NetworkError", NetworkError.String())
	assert.Equal(t, "Unknown", Kind(999).String())
}

func TestNew_FormatsMessage(t *testing.T) {
	t.Parallel()

	err := New(InvalidIdentifier, "identifier %q is empty", "")
	assert.Equal(t, "InvalidIdentifier: identifier \"\" is empty", err.Error())
}

func TestWrap_IncludesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := Wrap(NetworkError, cause, "remote authorize call failed")

	assert.Contains(t, err.Error(), "NetworkError")
	assert.Contains(t, err.Error(), "remote authorize call failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying failure")
	err := Wrap(CacheError, cause, "cache write failed")

	assert.True(t, errors.Is(err, cause))
}

func TestIs_MatchesKind(t *testing.T) {
	t.Parallel()

	err := New(Timeout, "authorize call timed out")
	assert.True(t, Is(err, Timeout))
	assert.False(t, Is(err, NetworkError))
	assert.False(t, Is(errors.New("plain error"), Timeout))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := New(StrategyError, "strategy is not applicable")
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, StrategyError, kind)

	kind, ok = KindOf(errors.New("plain error"))
	assert.False(t, ok)
	assert.Equal(t, InternalServer, kind)
}
