package opensea_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/mocks"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/opensea"
)

const apiURL = "https://api.opensea.io/api/v2"

var expectedHeaders = map[string]string{"X-API-KEY": "test-api-key"}

func TestOpenSeaClient_ListCollectionNFTs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := opensea.NewClient(mockHTTPClient, nil, apiURL+"/", "test-api-key", adapter.NewJSON())

	body := []byte(`{
		"nfts": [
			{
				"identifier": "1",
				"collection": "art",
				"contract": "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d",
				"name": "Ape #1",
				"image_url": "ipfs://QmTest1",
				"creator": {"user": {"username": "yuga"}, "profile_img_url": "https://img/yuga.png", "config": "verified"},
				"owners": [{"user": {"username": "alice"}, "profile_img_url": ""}],
				"last_sale": {"total_price": "1500000000000000000", "payment_token": {"symbol": "ETH", "decimals": 18}}
			},
			{
				"identifier": "2",
				"collection": "art",
				"creator": "0x0000000000000000000000000000000000000001",
				"owners": [{"address": "0x0000000000000000000000000000000000000002", "quantity": 1}],
				"last_sale": null
			}
		]
	}`)

	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/collection/art/nfts?limit=10", expectedHeaders).
		Return(body, nil)

	nfts, err := client.ListCollectionNFTs(context.Background(), "art", 10)
	require.NoError(t, err)
	require.Len(t, nfts, 2)

	first := nfts[0]
	assert.Equal(t, "1", first.Identifier)
	assert.Equal(t, "yuga", first.Creator.Username())
	assert.True(t, first.Creator.Verified())
	assert.Equal(t, "alice", first.Owners[0].Username())
	require.NotNil(t, first.LastSale)
	assert.True(t, decimal.RequireFromString("1500000000000000000").Equal(first.LastSale.TotalPrice))
	assert.Equal(t, int32(18), *first.LastSale.PaymentToken.Decimals)

	second := nfts[1]
	assert.Equal(t, "0x0000000000000000000000000000000000000001", second.Creator.Address)
	assert.False(t, second.Creator.Verified())
	assert.Equal(t, "", second.Creator.Username())
	assert.Equal(t, "0x0000000000000000000000000000000000000002", second.Owners[0].Address)
	assert.Nil(t, second.LastSale)
}

func TestOpenSeaClient_SearchAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := opensea.NewClient(mockHTTPClient, nil, apiURL, "test-api-key", adapter.NewJSON())

	mockHTTPClient.EXPECT().
		GetBytes(gomock.Any(), apiURL+"/assets?limit=5&search%5Bquery%5D=blue+ape", expectedHeaders).
		Return([]byte(`{"assets": [{"identifier": "9", "collection": "comics"}]}`), nil)

	nfts, err := client.SearchAssets(context.Background(), "blue ape", 5)
	require.NoError(t, err)
	require.Len(t, nfts, 1)
	assert.Equal(t, "9", nfts[0].Identifier)
}

func TestOpenSeaClient_GetNFT(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		httpErr     error
		expectedErr error
		expectedID  string
	}{
		{
			name:       "found",
			body:       []byte(`{"nft": {"identifier": "1", "collection": "poems", "description": "a poem"}}`),
			expectedID: "1",
		},
		{
			name:        "missing nft",
			body:        []byte(`{}`),
			expectedErr: domain.ErrAssetNotFound,
		},
		{
			name:    "upstream errors",
			body:    []byte(`{"errors": ["not found"]}`),
			httpErr: nil,
		},
		{
			name:    "http failure",
			httpErr: &adapter.HTTPStatusError{StatusCode: 500},
		},
		{
			name: "malformed payload",
			body: []byte(`{"nft": [`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
			client := opensea.NewClient(mockHTTPClient, nil, apiURL, "test-api-key", adapter.NewJSON())

			mockHTTPClient.EXPECT().
				GetBytes(gomock.Any(), apiURL+"/chain/ethereum/contract/0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d/nfts/1", expectedHeaders).
				Return(tt.body, tt.httpErr)

			nft, err := client.GetNFT(context.Background(), "ethereum", "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", "1")
			if tt.expectedID != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, nft.Identifier)
				return
			}

			require.Error(t, err)
			assert.Nil(t, nft)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			var statusErr *adapter.HTTPStatusError
			if tt.httpErr != nil {
				assert.True(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestOpenSeaClient_NoAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No HTTP expectations: the client must not reach the network
	client := opensea.NewClient(mocks.NewMockHTTPClient(ctrl), nil, apiURL, "", adapter.NewJSON())

	_, err := client.ListCollectionNFTs(context.Background(), "art", 10)
	assert.ErrorIs(t, err, domain.ErrNoAPIKey)

	_, err = client.SearchAssets(context.Background(), "q", 10)
	assert.ErrorIs(t, err, domain.ErrNoAPIKey)

	_, err = client.GetNFT(context.Background(), "ethereum", "0x1", "1")
	assert.ErrorIs(t, err, domain.ErrNoAPIKey)
}
