package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/ledger"
	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/registry"
	"github.com/modular-market/market/types"
)

const (
	registrar  = types.Address("0xdeb1oyer")
	alice      = types.Address("0xa11ce")
	bob        = types.Address("0xb0b")
	asksModule = types.Address("0xa5c5")
	fundsAddr  = types.Address("0xf94d5-9a7e")
	tokenAddr  = types.Address("0x704e9-9a7e")
	currency   = types.Address("0xc04417")
	collection = types.Address("0xc011ec7721")
)

func setupRegistry(t *testing.T) *registry.Manager {
	r, err := badger.NewMemRepo()
	assert.NoError(t, err)

	m := registry.NewManager(r, registrar)
	assert.NoError(t, m.RegisterModule(context.Background(), registrar, asksModule))
	return m
}

func TestFungibleGateway(t *testing.T) {
	ctx := context.Background()
	reg := setupRegistry(t)
	l := ledger.NewMemFungibleLedger()
	g := NewFungibleGateway(reg, l, fundsAddr)

	assert.NoError(t, l.Mint(ctx, currency, alice, types.NewAmount(100)))

	t.Run("needs module approval", func(t *testing.T) {
		err := g.Transfer(ctx, asksModule, currency, alice, bob, types.NewAmount(10))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("needs ledger allowance", func(t *testing.T) {
		assert.NoError(t, reg.SetApproval(ctx, alice, asksModule, true))

		err := g.Transfer(ctx, asksModule, currency, alice, bob, types.NewAmount(10))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)

		assert.NoError(t, l.Approve(ctx, currency, alice, g.Addr(), types.NewAmount(50)))
		assert.NoError(t, g.Transfer(ctx, asksModule, currency, alice, bob, types.NewAmount(10)))

		balance, err := g.BalanceOf(ctx, currency, bob)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(10), balance)
	})

	t.Run("native pull skips allowance", func(t *testing.T) {
		assert.NoError(t, l.Mint(ctx, types.NativeCurrency, alice, types.NewAmount(30)))
		assert.NoError(t, g.Transfer(ctx, asksModule, types.NativeCurrency, alice, bob, types.NewAmount(30)))
	})

	t.Run("native pull still needs module approval", func(t *testing.T) {
		assert.NoError(t, l.Mint(ctx, types.NativeCurrency, bob, types.NewAmount(5)))
		err := g.Transfer(ctx, asksModule, types.NativeCurrency, bob, alice, types.NewAmount(5))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("revoking module approval stops moves", func(t *testing.T) {
		assert.NoError(t, reg.SetApproval(ctx, alice, asksModule, false))
		err := g.Transfer(ctx, asksModule, currency, alice, bob, types.NewAmount(10))
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("module moves its own escrow freely", func(t *testing.T) {
		assert.NoError(t, l.Mint(ctx, currency, asksModule, types.NewAmount(7)))
		assert.NoError(t, g.Transfer(ctx, asksModule, currency, asksModule, bob, types.NewAmount(7)))
	})

	t.Run("insufficient balance surfaces", func(t *testing.T) {
		assert.NoError(t, reg.SetApproval(ctx, alice, asksModule, true))
		err := g.Transfer(ctx, asksModule, currency, alice, bob, types.NewAmount(100000))
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})
}

func TestUniqueGateway(t *testing.T) {
	ctx := context.Background()
	reg := setupRegistry(t)
	l := ledger.NewMemUniqueLedger()
	g := NewUniqueGateway(reg, l, tokenAddr)

	assert.NoError(t, l.Mint(ctx, collection, alice, 1))
	assert.NoError(t, reg.SetApproval(ctx, alice, asksModule, true))

	t.Run("needs operator approval on ledger", func(t *testing.T) {
		err := g.Transfer(ctx, asksModule, collection, alice, bob, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)

		assert.NoError(t, l.SetOperator(ctx, alice, collection, g.Addr(), true))
		assert.NoError(t, g.Transfer(ctx, asksModule, collection, alice, bob, 1))

		owner, err := g.OwnerOf(ctx, collection, 1)
		assert.NoError(t, err)
		assert.Equal(t, bob, owner)
	})

	t.Run("module releases escrow it owns", func(t *testing.T) {
		assert.NoError(t, l.Mint(ctx, collection, asksModule, 2))
		assert.NoError(t, g.Transfer(ctx, asksModule, collection, asksModule, alice, 2))
	})
}

func TestMultiGateway(t *testing.T) {
	ctx := context.Background()
	reg := setupRegistry(t)
	l := ledger.NewMemMultiLedger()
	g := NewMultiGateway(reg, l, tokenAddr)

	assert.NoError(t, l.Mint(ctx, collection, alice, 0, 10))
	assert.NoError(t, reg.SetApproval(ctx, alice, asksModule, true))
	assert.NoError(t, l.SetOperator(ctx, alice, collection, g.Addr(), true))

	t.Run("moves exact quantity", func(t *testing.T) {
		assert.NoError(t, g.Transfer(ctx, asksModule, collection, alice, bob, 0, 4))

		balance, err := g.BalanceOf(ctx, collection, bob, 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(4), balance)
	})

	t.Run("cannot cover quantity", func(t *testing.T) {
		err := g.Transfer(ctx, asksModule, collection, alice, bob, 0, 100)
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})
}
