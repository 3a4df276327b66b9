package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

func TestRoyaltyRepo(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")
	pieces := []types.RoyaltyPiece{
		{Beneficiary: "0x4071", Bps: 1000},
		{Beneficiary: "0x4072", Bps: 500},
	}

	t.Run("missing entry is ErrNotFound", func(t *testing.T) {
		_, err := r.RoyaltyRepo().GetRoyalties(ctx, collection, 0)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("set and get exact item", func(t *testing.T) {
		assert.NoError(t, r.RoyaltyRepo().SetRoyalties(ctx, collection, 0, pieces))
		res, err := r.RoyaltyRepo().GetRoyalties(ctx, collection, 0)
		assert.NoError(t, err)
		assert.Equal(t, pieces, res)
	})

	t.Run("wildcard key is distinct", func(t *testing.T) {
		assert.NoError(t, r.RoyaltyRepo().SetRoyalties(ctx, collection, types.WildcardTokenID, pieces[:1]))
		res, err := r.RoyaltyRepo().GetRoyalties(ctx, collection, types.WildcardTokenID)
		assert.NoError(t, err)
		assert.Len(t, res, 1)

		res, err = r.RoyaltyRepo().GetRoyalties(ctx, collection, 0)
		assert.NoError(t, err)
		assert.Len(t, res, 2)
	})

	t.Run("replace with empty list", func(t *testing.T) {
		assert.NoError(t, r.RoyaltyRepo().SetRoyalties(ctx, collection, 0, nil))
		res, err := r.RoyaltyRepo().GetRoyalties(ctx, collection, 0)
		assert.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestFloorPriceAndFeeRepo(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	t.Run("missing floor is ErrNotFound", func(t *testing.T) {
		_, err := r.FloorPriceRepo().GetFloorPrice(ctx, collection, types.NativeCurrency)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("floor per currency", func(t *testing.T) {
		assert.NoError(t, r.FloorPriceRepo().SetFloorPrice(ctx, &types.FloorPrice{
			Collection: collection, Currency: "0xc04417", Price: types.NewAmount(10),
		}))
		assert.NoError(t, r.FloorPriceRepo().SetFloorPrice(ctx, &types.FloorPrice{
			Collection: collection, Currency: types.NativeCurrency, Price: types.NewAmount(1),
		}))

		fp, err := r.FloorPriceRepo().GetFloorPrice(ctx, collection, "0xc04417")
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(10), fp.Price)

		fp, err = r.FloorPriceRepo().GetFloorPrice(ctx, collection, types.NativeCurrency)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(1), fp.Price)
	})

	t.Run("fee params per module", func(t *testing.T) {
		_, err := r.FeeRepo().GetFeeParams(ctx, "0x1110d01e")
		assert.ErrorIs(t, err, repo.ErrNotFound)

		params := &types.FeeParams{Module: "0x1110d01e", Recipient: "0xfee", Bps: 250}
		assert.NoError(t, r.FeeRepo().SetFeeParams(ctx, params))
		res, err := r.FeeRepo().GetFeeParams(ctx, "0x1110d01e")
		assert.NoError(t, err)
		assert.Equal(t, params, res)
	})
}

func TestApprovalRepo(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	user := types.Address("0xa11ce")
	mods := []types.Address{"0x10d1", "0x10d2", "0x10d3"}

	t.Run("unknown module not registered", func(t *testing.T) {
		registered, err := r.ApprovalRepo().IsModuleRegistered(ctx, mods[0])
		assert.NoError(t, err)
		assert.False(t, registered)
	})

	t.Run("register is idempotent", func(t *testing.T) {
		assert.NoError(t, r.ApprovalRepo().RegisterModule(ctx, mods[0]))
		assert.NoError(t, r.ApprovalRepo().RegisterModule(ctx, mods[0]))
		registered, err := r.ApprovalRepo().IsModuleRegistered(ctx, mods[0])
		assert.NoError(t, err)
		assert.True(t, registered)
	})

	t.Run("batch approval sets every bit", func(t *testing.T) {
		assert.NoError(t, r.ApprovalRepo().SetApprovals(ctx, user, mods, true))
		for _, m := range mods {
			approved, err := r.ApprovalRepo().IsApproved(ctx, user, m)
			assert.NoError(t, err)
			assert.True(t, approved)
		}
	})

	t.Run("revoke single module", func(t *testing.T) {
		assert.NoError(t, r.ApprovalRepo().SetApprovals(ctx, user, mods[:1], false))
		approved, err := r.ApprovalRepo().IsApproved(ctx, user, mods[0])
		assert.NoError(t, err)
		assert.False(t, approved)

		approved, err = r.ApprovalRepo().IsApproved(ctx, user, mods[1])
		assert.NoError(t, err)
		assert.True(t, approved)
	})

	t.Run("approvals are per user", func(t *testing.T) {
		approved, err := r.ApprovalRepo().IsApproved(ctx, "0xb0b", mods[1])
		assert.NoError(t, err)
		assert.False(t, approved)
	})
}
