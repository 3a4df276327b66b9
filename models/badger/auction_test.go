package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

func TestAuctionRepo(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	collection := types.NewCollection(types.ClassMulti, "0xc011ec7104")
	start := time.Unix(1700000000, 0).UTC()

	newAuction := func(index uint64, seller types.Address) *types.Auction {
		return &types.Auction{
			Collection:     collection,
			TokenID:        3,
			Index:          index,
			Seller:         seller,
			Quantity:       2,
			Duration:       time.Hour,
			ReservePrice:   types.NewAmount(10),
			BuyNowPrice:    types.ZeroAmount(),
			FundsRecipient: seller,
			StartTime:      start,
			EndTime:        start.Add(time.Hour),
			Currency:       types.NativeCurrency,
			HighestBid:     types.ZeroAmount(),
			Status:         types.AuctionCreated,
			Escrowed:       true,
		}
	}

	t.Run("get missing auction", func(t *testing.T) {
		_, err := r.AuctionRepo().GetAuction(ctx, collection, 3, 1)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		auction := newAuction(1, "0xa11ce")
		assert.NoError(t, r.AuctionRepo().SaveAuction(ctx, auction))
		res, err := r.AuctionRepo().GetAuction(ctx, collection, 3, 1)
		assert.NoError(t, err)
		assert.Equal(t, auction, res)
	})

	t.Run("status update round trips", func(t *testing.T) {
		auction := newAuction(1, "0xa11ce")
		auction.Status = types.AuctionActive
		auction.HighestBidder = "0xb0b"
		auction.HighestBid = types.NewAmount(20)
		assert.NoError(t, r.AuctionRepo().SaveAuction(ctx, auction))

		res, err := r.AuctionRepo().GetAuction(ctx, collection, 3, 1)
		assert.NoError(t, err)
		assert.Equal(t, types.AuctionActive, res.Status)
		assert.Equal(t, types.Address("0xb0b"), res.HighestBidder)
	})

	t.Run("list by seller", func(t *testing.T) {
		assert.NoError(t, r.AuctionRepo().SaveAuction(ctx, newAuction(2, "0xa11ce")))
		assert.NoError(t, r.AuctionRepo().SaveAuction(ctx, newAuction(3, "0xca401")))

		mine, err := r.AuctionRepo().ListAuctionsBySeller(ctx, collection, 3, "0xa11ce")
		assert.NoError(t, err)
		assert.Len(t, mine, 2)

		all, err := r.AuctionRepo().ListAuctions(ctx, collection, 3)
		assert.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
