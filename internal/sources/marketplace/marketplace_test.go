package marketplace_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/mocks"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/opensea"
	"github.com/feral-file/ff-storefront/internal/sources/marketplace"
	"github.com/feral-file/ff-storefront/internal/types"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func int32Ptr(v int32) *int32 {
	return &v
}

func TestAdapter_FetchByCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockOpenSeaClient(ctrl)
	adapter := marketplace.New(client, map[string]string{"art": "boredapeyachtclub"})

	t.Run("maps listed and unlisted nfts", func(t *testing.T) {
		client.EXPECT().
			ListCollectionNFTs(gomock.Any(), "boredapeyachtclub", 2).
			Return([]opensea.NFT{
				{
					Identifier: "42",
					Collection: "boredapeyachtclub",
					Contract:   "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D",
					Name:       types.StringPtr("Ape 42"),
					ImageURL:   types.StringPtr("ipfs://QmApe42"),
					Creator: &opensea.Account{
						Address:       "0xcreator",
						ProfileImgURL: "https://img.example/creator.png",
						Config:        "verified",
						User:          &opensea.User{Username: "yuga"},
					},
					Owners:   []opensea.Account{{Address: "0xowner"}},
					LastSale: &opensea.Sale{TotalPrice: decimal.RequireFromString("1500000000000000000")},
				},
				{
					Identifier: "43",
					Contract:   "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D",
				},
			}, nil)

		assets := adapter.FetchByCategory(context.Background(), domain.CategoryArt, 2)
		require.Len(t, assets, 2)

		listed := assets[0]
		assert.Equal(t, "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d-42", listed.ID)
		assert.Equal(t, marketplace.SOURCE_NAME, listed.Source)
		assert.Equal(t, "Ape 42", listed.Title)
		assert.Equal(t, "ipfs://QmApe42", listed.ImageURI)
		assert.Equal(t, domain.CategoryArt, listed.Category)
		assert.True(t, listed.IsListed)
		assert.True(t, decimal.RequireFromString("1.5").Equal(listed.PriceAmount))
		assert.Equal(t, "ETH", listed.PriceCurrency)
		assert.Equal(t, "yuga", listed.Creator.Name)
		assert.True(t, listed.Creator.Verified)
		assert.Equal(t, "https://img.example/creator.png", listed.Creator.AvatarURI)
		assert.Equal(t, "0xowner", listed.Owner.Name)

		unlisted := assets[1]
		assert.False(t, unlisted.IsListed)
		assert.True(t, unlisted.PriceAmount.IsZero())
		assert.Equal(t, "", unlisted.Title)
		assert.Equal(t, "", unlisted.Creator.Name)
		assert.False(t, unlisted.Creator.Verified)
		assert.Equal(t, int64(0), unlisted.LikeCount)
	})

	t.Run("payment token decimals and symbol", func(t *testing.T) {
		client.EXPECT().
			ListCollectionNFTs(gomock.Any(), "comics", 1).
			Return([]opensea.NFT{{
				Identifier: "1",
				Contract:   "0xabc",
				LastSale: &opensea.Sale{
					TotalPrice:   decimal.RequireFromString("2500000"),
					PaymentToken: &opensea.PaymentToken{Symbol: "usdc", Decimals: int32Ptr(6)},
				},
			}}, nil)

		assets := adapter.FetchByCategory(context.Background(), domain.CategoryComics, 1)
		require.Len(t, assets, 1)
		assert.True(t, decimal.RequireFromString("2.5").Equal(assets[0].PriceAmount))
		assert.Equal(t, "USDC", assets[0].PriceCurrency)
	})

	t.Run("provider failure yields empty result", func(t *testing.T) {
		client.EXPECT().
			ListCollectionNFTs(gomock.Any(), "poems", 5).
			Return(nil, errors.New("status 503"))

		assets := adapter.FetchByCategory(context.Background(), domain.CategoryPoems, 5)
		assert.NotNil(t, assets)
		assert.Empty(t, assets)
	})

	t.Run("missing api key yields empty result", func(t *testing.T) {
		client.EXPECT().
			ListCollectionNFTs(gomock.Any(), "stories", 5).
			Return(nil, domain.ErrNoAPIKey)

		assert.Empty(t, adapter.FetchByCategory(context.Background(), domain.CategoryStories, 5))
	})

	t.Run("unknown category yields empty result", func(t *testing.T) {
		assert.Empty(t, adapter.FetchByCategory(context.Background(), domain.Category("music"), 5))
	})
}

func TestAdapter_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockOpenSeaClient(ctrl)
	adapter := marketplace.New(client, map[string]string{"comics": "sad-comics"})

	client.EXPECT().
		SearchAssets(gomock.Any(), "ape", 10).
		Return([]opensea.NFT{
			{Identifier: "1", Contract: "0xa", Collection: "sad-comics"},
			{Identifier: "2", Contract: "0xb", Collection: "random"},
		}, nil)

	assets := adapter.Search(context.Background(), "ape", 10)
	require.Len(t, assets, 2)
	assert.Equal(t, domain.CategoryComics, assets[0].Category)
	assert.Equal(t, domain.CategoryUncategorized, assets[1].Category)
}

func TestAdapter_FetchByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockOpenSeaClient(ctrl)
	adapter := marketplace.New(client, nil)

	t.Run("found", func(t *testing.T) {
		client.EXPECT().
			GetNFT(gomock.Any(), "ethereum", "0xabc", "7").
			Return(&opensea.NFT{Collection: "art", Name: types.StringPtr("Seven")}, nil)

		asset, ok := adapter.FetchByID(context.Background(), "eth", "0xabc", "7")
		require.True(t, ok)
		assert.Equal(t, "0xabc-7", asset.ID)
		assert.Equal(t, "Seven", asset.Title)
		assert.Equal(t, "ethereum", asset.Chain)
		assert.Equal(t, domain.CategoryArt, asset.Category)
	})

	t.Run("not found", func(t *testing.T) {
		client.EXPECT().
			GetNFT(gomock.Any(), "ethereum", "0xabc", "8").
			Return(nil, domain.ErrAssetNotFound)

		asset, ok := adapter.FetchByID(context.Background(), "ethereum", "0xabc", "8")
		assert.False(t, ok)
		assert.Nil(t, asset)
	})

	t.Run("provider failure", func(t *testing.T) {
		client.EXPECT().
			GetNFT(gomock.Any(), "polygon", "0xabc", "9").
			Return(nil, errors.New("timeout"))

		_, ok := adapter.FetchByID(context.Background(), "matic", "0xabc", "9")
		assert.False(t, ok)
	})

	t.Run("unsupported chain", func(t *testing.T) {
		_, ok := adapter.FetchByID(context.Background(), "tezos", "KT1abc", "1")
		assert.False(t, ok)
	})
}
