package indexer_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/mocks"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-storefront/internal/sources/indexer"
	"github.com/feral-file/ff-storefront/internal/types"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const (
	contractA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	contractB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func testRegistry() indexer.Registry {
	return indexer.Registry{
		domain.CategoryArt:    {contractA, contractB},
		domain.CategoryComics: {contractB},
	}
}

func TestAdapter_FetchByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category domain.Category
		limit    int
		setup    func(c *mocks.MockMoralisClient)
		validate func(t *testing.T, assets []domain.Asset)
	}{
		{
			name:     "walks contracts in order up to limit",
			category: domain.CategoryArt,
			limit:    3,
			setup: func(c *mocks.MockMoralisClient) {
				gomock.InOrder(
					c.EXPECT().GetContractNFTs(gomock.Any(), "eth", contractA, 3).Return([]moralis.NFT{
						{TokenAddress: contractA, TokenID: "1", Metadata: moralis.Metadata{Name: "One", Image: "ipfs://Qm1", CreatedBy: "alice"}},
						{TokenAddress: contractA, TokenID: "2", Name: "Collection", MinterAddress: "0xminter", PossibleSpam: true},
					}, nil),
					c.EXPECT().GetContractNFTs(gomock.Any(), "eth", contractB, 1).Return([]moralis.NFT{
						{TokenAddress: contractB, TokenID: "9", OwnerOf: "0xowner"},
						{TokenAddress: contractB, TokenID: "10"},
					}, nil),
				)
			},
			validate: func(t *testing.T, assets []domain.Asset) {
				require.Len(t, assets, 3)
				assert.Equal(t, contractA+"-1", assets[0].ID)
				assert.Equal(t, "One", assets[0].Title)
				assert.Equal(t, "ipfs://Qm1", assets[0].ImageURI)
				assert.Equal(t, "alice", assets[0].Creator.Name)
				assert.True(t, assets[0].Creator.Verified)

				assert.Equal(t, "Collection", assets[1].Title)
				assert.Equal(t, "0xminter", assets[1].Creator.Name)
				assert.False(t, assets[1].Creator.Verified)

				assert.Equal(t, contractB+"-9", assets[2].ID)
				assert.Equal(t, "0xowner", assets[2].Owner.Name)

				for _, a := range assets {
					assert.Equal(t, domain.CategoryArt, a.Category)
					assert.Equal(t, indexer.SOURCE_NAME, a.Source)
					assert.False(t, a.IsListed)
					assert.True(t, a.PriceAmount.IsZero())
					assert.Equal(t, domain.DEFAULT_CURRENCY, a.PriceCurrency)
				}
			},
		},
		{
			name:     "one failing contract keeps the others",
			category: domain.CategoryArt,
			limit:    5,
			setup: func(c *mocks.MockMoralisClient) {
				c.EXPECT().GetContractNFTs(gomock.Any(), "eth", contractA, 5).Return(nil, errors.New("status 500"))
				c.EXPECT().GetContractNFTs(gomock.Any(), "eth", contractB, 5).Return([]moralis.NFT{
					{TokenAddress: contractB, TokenID: "1"},
				}, nil)
			},
			validate: func(t *testing.T, assets []domain.Asset) {
				require.Len(t, assets, 1)
				assert.Equal(t, contractB+"-1", assets[0].ID)
			},
		},
		{
			name:     "every contract failing yields empty result",
			category: domain.CategoryComics,
			limit:    5,
			setup: func(c *mocks.MockMoralisClient) {
				c.EXPECT().GetContractNFTs(gomock.Any(), "eth", contractB, 5).Return(nil, domain.ErrNoAPIKey)
			},
			validate: func(t *testing.T, assets []domain.Asset) {
				assert.NotNil(t, assets)
				assert.Empty(t, assets)
			},
		},
		{
			name:     "category without contracts",
			category: domain.CategoryPoems,
			limit:    5,
			setup:    func(c *mocks.MockMoralisClient) {},
			validate: func(t *testing.T, assets []domain.Asset) {
				assert.Empty(t, assets)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockMoralisClient(ctrl)
			tt.setup(client)

			adapter := indexer.New(client, "ethereum", testRegistry())
			tt.validate(t, adapter.FetchByCategory(context.Background(), tt.category, tt.limit))
		})
	}
}

func TestAdapter_FetchByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockMoralisClient(ctrl)
	adapter := indexer.New(client, "eth", testRegistry())

	checksummed, ok := types.NormalizeEthereumAddress(contractB)
	require.True(t, ok)

	t.Run("found", func(t *testing.T) {
		client.EXPECT().
			GetNFT(gomock.Any(), "polygon", checksummed, "5").
			Return(&moralis.NFT{TokenAddress: contractB, TokenID: "5", Metadata: moralis.Metadata{Name: "Five"}}, nil)

		asset, ok := adapter.FetchByID(context.Background(), "polygon", contractB, "5")
		require.True(t, ok)
		assert.Equal(t, contractB+"-5", asset.ID)
		assert.Equal(t, "Five", asset.Title)
		assert.Equal(t, "polygon", asset.Chain)
		assert.Equal(t, domain.CategoryArt, asset.Category)
	})

	t.Run("not found", func(t *testing.T) {
		client.EXPECT().
			GetNFT(gomock.Any(), "eth", checksummed, "6").
			Return(nil, domain.ErrAssetNotFound)

		_, ok := adapter.FetchByID(context.Background(), "ethereum", contractB, "6")
		assert.False(t, ok)
	})

	t.Run("invalid locators never reach the provider", func(t *testing.T) {
		_, ok := adapter.FetchByID(context.Background(), "ethereum", "not-an-address", "1")
		assert.False(t, ok)

		_, ok = adapter.FetchByID(context.Background(), "ethereum", contractB, "abc")
		assert.False(t, ok)

		_, ok = adapter.FetchByID(context.Background(), "tezos", contractB, "1")
		assert.False(t, ok)
	})
}

func TestRegistry_CategoryOf(t *testing.T) {
	r := indexer.DefaultRegistry
	assert.Equal(t, domain.CategoryArt, r.CategoryOf("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"))
	assert.Equal(t, domain.CategoryPoems, r.CategoryOf("0xA7D8D9EF8D8CE8992DF33D8B8CF4AEBABD5BD270"))
	assert.Equal(t, domain.CategoryUncategorized, r.CategoryOf("0x0000000000000000000000000000000000000000"))
}

func TestRegistryFromConfig(t *testing.T) {
	assert.Nil(t, indexer.RegistryFromConfig(nil))

	r := indexer.RegistryFromConfig(map[string][]string{
		"Art":   {contractA},
		"music": {contractB},
	})
	assert.Equal(t, []string{contractA}, r[domain.CategoryArt])
	assert.Len(t, r, 1)
}
