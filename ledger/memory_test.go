package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/types"
)

func TestFungibleLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemFungibleLedger()

	alice := types.Address("0xa11ce")
	bob := types.Address("0xb0b")
	helper := types.Address("0xhe1per")
	currency := types.Address("0xc04417")

	assert.NoError(t, l.Mint(ctx, currency, alice, types.NewAmount(100)))

	t.Run("transfer moves exact amount", func(t *testing.T) {
		assert.NoError(t, l.Transfer(ctx, currency, alice, bob, types.NewAmount(30)))

		balance, err := l.BalanceOf(ctx, currency, alice)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(70), balance)

		balance, err = l.BalanceOf(ctx, currency, bob)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(30), balance)
	})

	t.Run("transfer beyond balance fails", func(t *testing.T) {
		err := l.Transfer(ctx, currency, alice, bob, types.NewAmount(1000))
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})

	t.Run("transferFrom needs allowance", func(t *testing.T) {
		err := l.TransferFrom(ctx, helper, currency, alice, bob, types.NewAmount(10))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)

		assert.NoError(t, l.Approve(ctx, currency, alice, helper, types.NewAmount(10)))
		assert.NoError(t, l.TransferFrom(ctx, helper, currency, alice, bob, types.NewAmount(10)))

		// allowance consumed
		err = l.TransferFrom(ctx, helper, currency, alice, bob, types.NewAmount(1))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("transferFrom by owner skips allowance", func(t *testing.T) {
		assert.NoError(t, l.TransferFrom(ctx, alice, currency, alice, bob, types.NewAmount(5)))
	})

	t.Run("shortfall beats missing allowance", func(t *testing.T) {
		err := l.TransferFrom(ctx, helper, currency, bob, alice, types.NewAmount(1000))
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})
}

func TestUniqueLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemUniqueLedger()

	alice := types.Address("0xa11ce")
	bob := types.Address("0xb0b")
	helper := types.Address("0xhe1per")
	collection := types.Address("0xc011ec7721")

	assert.NoError(t, l.Mint(ctx, collection, alice, 1))
	assert.Error(t, l.Mint(ctx, collection, alice, 1))

	t.Run("ownerOf", func(t *testing.T) {
		owner, err := l.OwnerOf(ctx, collection, 1)
		assert.NoError(t, err)
		assert.Equal(t, alice, owner)

		_, err = l.OwnerOf(ctx, collection, 2)
		assert.Error(t, err)
	})

	t.Run("transfer needs authority", func(t *testing.T) {
		err := l.TransferFrom(ctx, helper, collection, alice, bob, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)

		assert.NoError(t, l.SetOperator(ctx, alice, collection, helper, true))
		assert.NoError(t, l.TransferFrom(ctx, helper, collection, alice, bob, 1))

		owner, err := l.OwnerOf(ctx, collection, 1)
		assert.NoError(t, err)
		assert.Equal(t, bob, owner)
	})

	t.Run("wrong from fails", func(t *testing.T) {
		err := l.TransferFrom(ctx, bob, collection, alice, bob, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("per-token approval cleared after transfer", func(t *testing.T) {
		// drop the operator grant so only the per-token approval applies
		assert.NoError(t, l.SetOperator(ctx, alice, collection, helper, false))

		assert.NoError(t, l.Approve(ctx, bob, collection, 1, helper))
		assert.NoError(t, l.TransferFrom(ctx, helper, collection, bob, alice, 1))

		// helper's approval died with the transfer
		err := l.TransferFrom(ctx, helper, collection, alice, bob, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})
}

func TestMultiLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemMultiLedger()

	alice := types.Address("0xa11ce")
	bob := types.Address("0xb0b")
	helper := types.Address("0xhe1per")
	collection := types.Address("0xc011ec7104")

	assert.NoError(t, l.Mint(ctx, collection, alice, 0, 10))

	t.Run("balance and transfer", func(t *testing.T) {
		balance, err := l.BalanceOf(ctx, collection, alice, 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(10), balance)

		assert.NoError(t, l.TransferFrom(ctx, alice, collection, alice, bob, 0, 4))

		balance, err = l.BalanceOf(ctx, collection, bob, 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(4), balance)
	})

	t.Run("oversell fails", func(t *testing.T) {
		err := l.TransferFrom(ctx, alice, collection, alice, bob, 0, 100)
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})

	t.Run("operator transfer", func(t *testing.T) {
		err := l.TransferFrom(ctx, helper, collection, alice, bob, 0, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)

		assert.NoError(t, l.SetOperator(ctx, alice, collection, helper, true))
		assert.NoError(t, l.TransferFrom(ctx, helper, collection, alice, bob, 0, 1))

		assert.NoError(t, l.SetOperator(ctx, alice, collection, helper, false))
		err = l.TransferFrom(ctx, helper, collection, alice, bob, 0, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})
}
