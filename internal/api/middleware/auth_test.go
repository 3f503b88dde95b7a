package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type keyPair struct {
	private   *rsa.PrivateKey
	publicPEM string
}

func newKeyPair(t *testing.T) keyPair {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return keyPair{
		private:   key,
		publicPEM: string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
	}
}

func (k keyPair) sign(t *testing.T, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(k.private)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	keys := newKeyPair(t)
	other := newKeyPair(t)
	cfg := AuthConfig{JWTPublicKey: keys.publicPEM, APIKeys: []string{"k1"}}

	valid := keys.sign(t, jwt.RegisteredClaims{
		Subject:   "bidder-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := keys.sign(t, jwt.RegisteredClaims{
		Subject:   "bidder-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	foreign := other.sign(t, jwt.RegisteredClaims{Subject: "bidder-1"})

	tests := []struct {
		name            string
		header          string
		expectedSuccess bool
		expectedType    string
		expectedSubject string
	}{
		{name: "missing header", header: ""},
		{name: "malformed header", header: "Bearer"},
		{name: "unsupported scheme", header: "Basic abc"},
		{name: "valid jwt", header: "Bearer " + valid, expectedSuccess: true, expectedType: "jwt", expectedSubject: "bidder-1"},
		{name: "expired jwt", header: "Bearer " + expired},
		{name: "jwt signed by another key", header: "Bearer " + foreign},
		{name: "valid api key", header: "ApiKey k1", expectedSuccess: true, expectedType: "apikey"},
		{name: "unknown api key", header: "ApiKey k2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Authenticate(tt.header, cfg)

			assert.Equal(t, tt.expectedSuccess, result.Success)
			if tt.expectedSuccess {
				assert.Equal(t, tt.expectedType, result.AuthType)
				assert.Equal(t, tt.expectedSubject, result.AuthSubject)
			} else {
				assert.Error(t, result.Error)
			}
		})
	}
}

func serve(handler gin.HandlerFunc, target string, header string) (*httptest.ResponseRecorder, string) {
	var bidder string
	router := gin.New()
	router.GET("/t", handler, func(c *gin.Context) {
		bidder = BidderRef(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, bidder
}

func TestAPIKeyAuth(t *testing.T) {
	keys := newKeyPair(t)
	cfg := AuthConfig{JWTPublicKey: keys.publicPEM, APIKeys: []string{"k1"}}
	token := keys.sign(t, jwt.RegisteredClaims{Subject: "bidder-1"})

	w, _ := serve(APIKeyAuth(cfg), "/t", "ApiKey k1")
	assert.Equal(t, http.StatusOK, w.Code)

	// A bidder token is not enough to list auctions
	w, _ = serve(APIKeyAuth(cfg), "/t", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = serve(APIKeyAuth(cfg), "/t", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
}

func TestOptionalBidder(t *testing.T) {
	keys := newKeyPair(t)
	cfg := AuthConfig{JWTPublicKey: keys.publicPEM, APIKeys: []string{"k1"}}
	token := keys.sign(t, jwt.RegisteredClaims{Subject: "bidder-1"})
	noSubject := keys.sign(t, jwt.RegisteredClaims{})

	tests := []struct {
		name           string
		target         string
		header         string
		expectedBidder string
	}{
		{name: "anonymous", target: "/t"},
		{name: "header", target: "/t", header: "Bearer " + token, expectedBidder: "bidder-1"},
		{name: "query parameter", target: "/t?token=" + token, expectedBidder: "bidder-1"},
		{name: "invalid token continues anonymously", target: "/t", header: "Bearer nope"},
		{name: "token without subject", target: "/t", header: "Bearer " + noSubject},
		{name: "api key is not a bidder", target: "/t", header: "ApiKey k1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, bidder := serve(OptionalBidder(cfg), tt.target, tt.header)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedBidder, bidder)
		})
	}
}
