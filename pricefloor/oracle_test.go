package pricefloor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/types"
)

func TestOracle(t *testing.T) {
	ctx := context.Background()
	r, err := badger.NewMemRepo()
	assert.NoError(t, err)

	admin := types.Address("0xad819")
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")
	currency := types.Address("0xc04417")
	o := NewOracle(r, admin)

	t.Run("absent floor is zero", func(t *testing.T) {
		floor, err := o.FloorPrice(ctx, collection, currency)
		assert.NoError(t, err)
		assert.True(t, floor.IsZero())
	})

	t.Run("only admin sets", func(t *testing.T) {
		err := o.SetFloorPrice(ctx, "0xa11ce", collection, currency, types.NewAmount(5))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("set and read back", func(t *testing.T) {
		assert.NoError(t, o.SetFloorPrice(ctx, admin, collection, currency, types.NewAmount(5)))

		floor, err := o.FloorPrice(ctx, collection, currency)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(5), floor)
	})

	t.Run("floors are per currency", func(t *testing.T) {
		floor, err := o.FloorPrice(ctx, collection, types.NativeCurrency)
		assert.NoError(t, err)
		assert.True(t, floor.IsZero())
	})
}
