package types

import "strings"

// chainAliases maps the chain names used in asset locators to the
// identifiers the indexing API expects
var chainAliases = map[string]string{
	"ethereum": "eth",
	"eth":      "eth",
	"mainnet":  "eth",
	"polygon":  "polygon",
	"matic":    "polygon",
	"base":     "base",
	"arbitrum": "arbitrum",
	"optimism": "optimism",
	"sepolia":  "sepolia",
}

// IndexerChain converts a locator chain name to the indexing API chain id
func IndexerChain(chain string) (string, bool) {
	c, ok := chainAliases[strings.ToLower(strings.TrimSpace(chain))]
	return c, ok
}

// MarketplaceChain converts a locator chain name to the marketplace chain slug
func MarketplaceChain(chain string) (string, bool) {
	c, ok := IndexerChain(chain)
	if !ok {
		return "", false
	}
	if c == "eth" {
		return "ethereum", true
	}
	return c, true
}
