package moralis_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/mocks"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-storefront/internal/ratelimit"
)

const apiURL = "https://deep-index.moralis.io/api/v2.2"

var expectedHeaders = map[string]string{"X-API-Key": "test-key"}

func TestClient_GetContractNFTs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := moralis.NewClient(mockHTTPClient, nil, apiURL, "test-key", adapter.NewJSON())

	body := []byte(`{
		"result": [
			{
				"token_address": "0x9a69597c0165e5e541a9a7a229119f00a8a13f5b",
				"token_id": "7",
				"owner_of": "0xowner",
				"possible_spam": false,
				"metadata": "{\"name\":\"Cat #7\",\"description\":\"a cat\",\"image\":\"ipfs://QmCat\"}"
			},
			{
				"token_address": "0x9a69597c0165e5e541a9a7a229119f00a8a13f5b",
				"token_id": "8",
				"possible_spam": true,
				"metadata": {"name": "Cat #8", "image_url": "https://img/8.png"}
			},
			{
				"token_address": "0x9a69597c0165e5e541a9a7a229119f00a8a13f5b",
				"token_id": "9",
				"metadata": "not json"
			},
			{
				"token_address": "0x9a69597c0165e5e541a9a7a229119f00a8a13f5b",
				"token_id": "10",
				"metadata": null
			}
		],
		"cursor": null
	}`)

	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/nft/0x9a69597c0165e5e541a9a7a229119f00a8a13f5b?chain=eth&format=decimal&limit=20", expectedHeaders).
		Return(body, nil)

	nfts, err := client.GetContractNFTs(context.Background(), "eth", "0x9A69597C0165E5E541A9A7A229119F00A8A13F5B", 20)
	require.NoError(t, err)
	require.Len(t, nfts, 4)

	assert.Equal(t, "Cat #7", nfts[0].Metadata.Name)
	assert.Equal(t, "a cat", nfts[0].Metadata.Description)
	assert.Equal(t, "ipfs://QmCat", nfts[0].Metadata.ImageURI())
	assert.False(t, nfts[0].PossibleSpam)

	assert.Equal(t, "Cat #8", nfts[1].Metadata.Name)
	assert.Equal(t, "https://img/8.png", nfts[1].Metadata.ImageURI())
	assert.True(t, nfts[1].PossibleSpam)

	assert.Equal(t, moralis.Metadata{}, nfts[2].Metadata)
	assert.Equal(t, moralis.Metadata{}, nfts[3].Metadata)
}

func TestClient_GetNFT(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := moralis.NewClient(mockHTTPClient, nil, apiURL, "test-key", adapter.NewJSON())

	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/nft/0xabc/1?chain=eth&format=decimal", expectedHeaders).
		Return([]byte(`{"token_address": "0xabc", "token_id": "1"}`), nil)
	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/nft/0xabc/2?chain=eth&format=decimal", expectedHeaders).
		Return([]byte(`{}`), nil)

	nft, err := client.GetNFT(context.Background(), "eth", "0xABC", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", nft.TokenID)

	_, err = client.GetNFT(context.Background(), "eth", "0xABC", "2")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestClient_NoAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := moralis.NewClient(mocks.NewMockHTTPClient(ctrl), nil, apiURL, "", adapter.NewJSON())

	_, err := client.GetContractNFTs(context.Background(), "eth", "0xabc", 10)
	assert.ErrorIs(t, err, domain.ErrNoAPIKey)
}

func TestClient_RequestsGoThroughRateLimitProxy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	mockProxy := mocks.NewMockRateLimitProxy(ctrl)
	client := moralis.NewClient(mockHTTPClient, mockProxy, apiURL, "test-key", adapter.NewJSON())

	mockProxy.EXPECT().
		Request(gomock.Any(), moralis.PROVIDER_NAME, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, fn ratelimit.RequestFunc) (interface{}, error) {
			return fn(ctx)
		})
	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/nft/0xabc/1?chain=eth&format=decimal", expectedHeaders).
		Return([]byte(`{"token_address": "0xabc", "token_id": "1"}`), nil)

	nft, err := client.GetNFT(context.Background(), "eth", "0xabc", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", nft.TokenID)

	mockProxy.EXPECT().
		Request(gomock.Any(), moralis.PROVIDER_NAME, gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	_, err = client.GetNFT(context.Background(), "eth", "0xabc", "2")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
