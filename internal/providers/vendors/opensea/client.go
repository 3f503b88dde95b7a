package opensea

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/ratelimit"
)

const PROVIDER_NAME = "opensea"

// CollectionNFTsResponse represents the response of the collection NFTs endpoint
type CollectionNFTsResponse struct {
	NFTs []NFT   `json:"nfts"`
	Next *string `json:"next,omitempty"`
}

// SearchResponse represents the response of the asset search endpoint
type SearchResponse struct {
	Assets []NFT `json:"assets"`
}

// NFTResponse represents the response from OpenSea Get NFT endpoint
type NFTResponse struct {
	NFT    *NFT     `json:"nft"`
	Errors []string `json:"errors,omitempty"`
}

// Client defines the interface for OpenSea client operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../../mocks/opensea_client.go -package=mocks -mock_names=Client=MockOpenSeaClient
type Client interface {
	// ListCollectionNFTs lists up to limit NFTs of a collection slug
	ListCollectionNFTs(ctx context.Context, collection string, limit int) ([]NFT, error)

	// SearchAssets runs a free-text asset search
	SearchAssets(ctx context.Context, query string, limit int) ([]NFT, error)

	// GetNFT fetches a single NFT by chain, contract and token id
	GetNFT(ctx context.Context, chain, contractAddress, tokenID string) (*NFT, error)
}

// OpenSeaClient implements OpenSea client
type OpenSeaClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	apiKey         string
	json           adapter.JSON
}

// NewClient creates a new OpenSea client.
// An empty apiKey yields a client whose every call fails with domain.ErrNoAPIKey.
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, apiKey string, json adapter.JSON) Client {
	return &OpenSeaClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         strings.TrimSuffix(apiURL, "/"),
		apiKey:         apiKey,
		json:           json,
	}
}

// ListCollectionNFTs calls GET /collection/{slug}/nfts?limit=N
func (c *OpenSeaClient) ListCollectionNFTs(ctx context.Context, collection string, limit int) ([]NFT, error) {
	u := fmt.Sprintf("%s/collection/%s/nfts?limit=%d", c.apiURL, url.PathEscape(collection), limit)

	var response CollectionNFTsResponse
	if err := c.get(ctx, u, &response); err != nil {
		return nil, err
	}
	return response.NFTs, nil
}

// SearchAssets calls GET /assets?search[query]=Q&limit=N
func (c *OpenSeaClient) SearchAssets(ctx context.Context, query string, limit int) ([]NFT, error) {
	params := url.Values{}
	params.Set("search[query]", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	u := fmt.Sprintf("%s/assets?%s", c.apiURL, params.Encode())

	var response SearchResponse
	if err := c.get(ctx, u, &response); err != nil {
		return nil, err
	}
	return response.Assets, nil
}

// GetNFT calls GET /chain/{chain}/contract/{addr}/nfts/{tokenId}
func (c *OpenSeaClient) GetNFT(ctx context.Context, chain, contractAddress, tokenID string) (*NFT, error) {
	u := fmt.Sprintf("%s/chain/%s/contract/%s/nfts/%s",
		c.apiURL,
		chain,
		strings.ToLower(contractAddress),
		tokenID,
	)

	var response NFTResponse
	if err := c.get(ctx, u, &response); err != nil {
		return nil, err
	}

	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("OpenSea API errors: %v", response.Errors)
	}
	if response.NFT == nil {
		return nil, domain.ErrAssetNotFound
	}

	return response.NFT, nil
}

func (c *OpenSeaClient) get(ctx context.Context, u string, out interface{}) error {
	if c.apiKey == "" {
		return domain.ErrNoAPIKey
	}

	headers := map[string]string{
		"X-API-KEY": c.apiKey,
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, u, headers)
	})
	if err != nil {
		return fmt.Errorf("failed to call OpenSea API: %w", err)
	}

	if err := c.json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal OpenSea response: %w", err)
	}

	return nil
}
