package uri_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/uri"
)

const testHash = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func newResolver(t *testing.T) *uri.Resolver {
	r, err := uri.NewResolver(domain.DefaultIPFSGateways)
	require.NoError(t, err)
	return r
}

func TestNewResolver(t *testing.T) {
	_, err := uri.NewResolver(nil)
	assert.Error(t, err)

	_, err = uri.NewResolver([]string{"", "  "})
	assert.Error(t, err)

	r, err := uri.NewResolver([]string{"https://gw.example/ipfs"})
	require.NoError(t, err)
	got, err := r.Resolve("ipfs://"+testHash, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/ipfs/"+testHash, got)
}

func TestResolver_Resolve(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name        string
		uri         string
		attempt     int
		expected    string
		expectedErr error
	}{
		{
			name:     "https url unchanged",
			uri:      "https://example.com/image.png",
			attempt:  0,
			expected: "https://example.com/image.png",
		},
		{
			name:     "https url unchanged for later attempts",
			uri:      "https://example.com/image.png",
			attempt:  3,
			expected: "https://example.com/image.png",
		},
		{
			name:     "plain url unchanged for out of range attempts",
			uri:      "http://example.com/a.gif",
			attempt:  42,
			expected: "http://example.com/a.gif",
		},
		{
			name:     "ipfs first gateway",
			uri:      "ipfs://" + testHash,
			attempt:  0,
			expected: "https://ipfs.io/ipfs/" + testHash,
		},
		{
			name:     "ipfs second gateway",
			uri:      "ipfs://" + testHash,
			attempt:  1,
			expected: "https://gateway.pinata.cloud/ipfs/" + testHash,
		},
		{
			name:     "ipfs legacy double prefix",
			uri:      "ipfs://ipfs/" + testHash + "/1.png",
			attempt:  3,
			expected: "https://dweb.link/ipfs/" + testHash + "/1.png",
		},
		{
			name:     "arweave locator unchanged",
			uri:      "ar://bNbA3TEQVL60xlgCcqdz4ZPHFZ711cZ3hmkpGttDt_U",
			attempt:  2,
			expected: "ar://bNbA3TEQVL60xlgCcqdz4ZPHFZ711cZ3hmkpGttDt_U",
		},
		{
			name:     "data uri unchanged",
			uri:      domain.PLACEHOLDER_IMAGE,
			attempt:  0,
			expected: domain.PLACEHOLDER_IMAGE,
		},
		{
			name:        "attempt beyond gateway list",
			uri:         "ipfs://" + testHash,
			attempt:     4,
			expectedErr: uri.ErrAttemptOutOfRange,
		},
		{
			name:        "negative attempt",
			uri:         "ipfs://" + testHash,
			attempt:     -1,
			expectedErr: uri.ErrAttemptOutOfRange,
		},
		{
			name:        "empty uri",
			uri:         "  ",
			expectedErr: uri.ErrEmptyURI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.uri, tt.attempt)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolver_EveryAttemptKeepsHashSuffix(t *testing.T) {
	r := newResolver(t)
	for k := 0; k < r.Attempts(); k++ {
		got, err := r.Resolve("ipfs://"+testHash, k)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultIPFSGateways[k]+testHash, got)
	}
}

func TestContentHash(t *testing.T) {
	h, ok := uri.ContentHash("ipfs://" + testHash)
	assert.True(t, ok)
	assert.Equal(t, testHash, h)

	_, ok = uri.ContentHash("ipfs://")
	assert.False(t, ok)

	_, ok = uri.ContentHash("https://ipfs.io/ipfs/" + testHash)
	assert.False(t, ok)

	assert.True(t, uri.IsContentAddressed("ipfs://"+testHash))
	assert.True(t, uri.IsDataURI("data:image/png;base64,AAAA"))
}
