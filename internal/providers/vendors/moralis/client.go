package moralis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/ratelimit"
)

const PROVIDER_NAME = "moralis"

// Client defines the interface for the indexing API client to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../../mocks/moralis_client.go -package=mocks -mock_names=Client=MockMoralisClient
type Client interface {
	// GetContractNFTs lists up to limit NFTs minted by a contract
	GetContractNFTs(ctx context.Context, chain, contractAddress string, limit int) ([]NFT, error)

	// GetNFT fetches a single NFT by contract and token id
	GetNFT(ctx context.Context, chain, contractAddress, tokenID string) (*NFT, error)
}

type client struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	apiKey         string
	json           adapter.JSON
}

// NewClient creates a new indexing API client.
// An empty apiKey yields a client whose every call fails with domain.ErrNoAPIKey.
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, apiKey string, json adapter.JSON) Client {
	return &client{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         strings.TrimSuffix(apiURL, "/"),
		apiKey:         apiKey,
		json:           json,
	}
}

// GetContractNFTs calls GET /nft/{address}?chain=C&format=decimal&limit=N
func (c *client) GetContractNFTs(ctx context.Context, chain, contractAddress string, limit int) ([]NFT, error) {
	params := url.Values{}
	params.Set("chain", chain)
	params.Set("format", "decimal")
	params.Set("limit", fmt.Sprintf("%d", limit))
	u := fmt.Sprintf("%s/nft/%s?%s", c.apiURL, strings.ToLower(contractAddress), params.Encode())

	var response ContractNFTsResponse
	if err := c.get(ctx, u, &response); err != nil {
		return nil, err
	}
	return response.Result, nil
}

// GetNFT calls GET /nft/{address}/{tokenId}?chain=C&format=decimal
func (c *client) GetNFT(ctx context.Context, chain, contractAddress, tokenID string) (*NFT, error) {
	params := url.Values{}
	params.Set("chain", chain)
	params.Set("format", "decimal")
	u := fmt.Sprintf("%s/nft/%s/%s?%s", c.apiURL, strings.ToLower(contractAddress), tokenID, params.Encode())

	var nft NFT
	if err := c.get(ctx, u, &nft); err != nil {
		return nil, err
	}
	if nft.TokenAddress == "" && nft.TokenID == "" {
		return nil, domain.ErrAssetNotFound
	}
	return &nft, nil
}

func (c *client) get(ctx context.Context, u string, out interface{}) error {
	if c.apiKey == "" {
		return domain.ErrNoAPIKey
	}

	headers := map[string]string{
		"X-API-Key": c.apiKey,
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, u, headers)
	})
	if err != nil {
		return fmt.Errorf("failed to call Moralis API: %w", err)
	}

	if err := c.json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal Moralis response: %w", err)
	}

	return nil
}
