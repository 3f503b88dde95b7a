package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringHelpers(t *testing.T) {
	s := StringPtr("test")
	assert.Equal(t, "test", *s)

	assert.True(t, StringNilOrEmpty(nil))
	assert.True(t, StringNilOrEmpty(StringPtr("")))
	assert.False(t, StringNilOrEmpty(StringPtr("x")))

	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "x", SafeString(StringPtr("x")))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty("", " "))
}

func TestIsTokenID(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"0", true},
		{"1234", true},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", true},
		{"", false},
		{"-1", false},
		{"0x1", false},
		{"12a", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTokenID(tt.input))
		})
	}
}

func TestNormalizeEthereumAddress(t *testing.T) {
	addr, ok := NormalizeEthereumAddress("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d")
	assert.True(t, ok)
	assert.Equal(t, "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", addr)

	_, ok = NormalizeEthereumAddress("not-an-address")
	assert.False(t, ok)

	assert.True(t, IsEthereumAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsEthereumAddress("tz1abc"))
}

func TestChainMapping(t *testing.T) {
	tests := []struct {
		chain       string
		indexer     string
		marketplace string
		ok          bool
	}{
		{"ethereum", "eth", "ethereum", true},
		{"ETH", "eth", "ethereum", true},
		{"polygon", "polygon", "polygon", true},
		{"matic", "polygon", "polygon", true},
		{"tezos", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.chain, func(t *testing.T) {
			ic, ok := IndexerChain(tt.chain)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.indexer, ic)

			mc, ok := MarketplaceChain(tt.chain)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.marketplace, mc)
		})
	}
}
