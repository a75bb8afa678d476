package authmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateHashData_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    *CertificateHashData
		wantErr bool
	}{
		{
			name: "valid SHA256",
			hash: &CertificateHashData{
				HashAlgorithm:  HashSHA256,
				IssuerNameHash: "abc123",
				IssuerKeyHash:  "def456",
				SerialNumber:   "01AF",
			},
		},
		{
			name:    "nil",
			hash:    nil,
			wantErr: true,
		},
		{
			name: "unsupported algorithm",
			hash: &CertificateHashData{
				HashAlgorithm:  HashAlgorithm("MD5"),
				IssuerNameHash: "abc123",
				IssuerKeyHash:  "def456",
				SerialNumber:   "01AF",
			},
			wantErr: true,
		},
		{
			name: "empty issuer name hash",
			hash: &CertificateHashData{
				HashAlgorithm: HashSHA256,
				IssuerKeyHash: "def456",
				SerialNumber:  "01AF",
			},
			wantErr: true,
		},
		{
			name: "issuer key hash has invalid characters",
			hash: &CertificateHashData{
				HashAlgorithm:  HashSHA256,
				IssuerNameHash: "abc123",
				IssuerKeyHash:  "def-456!",
				SerialNumber:   "01AF",
			},
			wantErr: true,
		},
		{
			name: "empty serial number",
			hash: &CertificateHashData{
				HashAlgorithm:  HashSHA256,
				IssuerNameHash: "abc123",
				IssuerKeyHash:  "def456",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.hash.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCertificateHashData_IsStrictHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash *CertificateHashData
		want bool
	}{
		{
			name: "lowercase hex SHA256",
			hash: &CertificateHashData{HashAlgorithm: HashSHA256, IssuerNameHash: "ab01", IssuerKeyHash: "cd23"},
			want: true,
		},
		{
			name: "uppercase hex fails strict",
			hash: &CertificateHashData{HashAlgorithm: HashSHA256, IssuerNameHash: "AB01", IssuerKeyHash: "cd23"},
			want: false,
		},
		{
			name: "non-SHA256 algorithm fails strict even with lowercase hex",
			hash: &CertificateHashData{HashAlgorithm: HashSHA1, IssuerNameHash: "ab01", IssuerKeyHash: "cd23"},
			want: false,
		},
		{
			name: "nil",
			hash: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.hash.IsStrictHex())
		})
	}
}

func TestRequiresAdditionalInfo(t *testing.T) {
	t.Parallel()
	assert.True(t, RequiresAdditionalInfo(IdentifierEMAID))
	assert.True(t, RequiresAdditionalInfo(IdentifierISO14443))
	assert.False(t, RequiresAdditionalInfo(IdentifierIDTag))
}

func TestIsCertificateBased(t *testing.T) {
	t.Parallel()
	assert.True(t, IsCertificateBased(IdentifierCertificate))
	assert.False(t, IsCertificateBased(IdentifierIDTag))
}
