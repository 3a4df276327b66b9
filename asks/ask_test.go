package asks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/fees"
	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/ledger"
	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/registry"
	"github.com/modular-market/market/royalty"
	"github.com/modular-market/market/types"
)

const (
	admin       = types.Address("0xad819")
	treasury    = types.Address("0x72ea5")
	seller      = types.Address("0xa11ce")
	buyer       = types.Address("0xb0b")
	finder      = types.Address("0xf19de2")
	creator     = types.Address("0xc2ea7o2")
	currency    = types.Address("0xc04417")
	moduleAddr  = types.Address("0xa5c5")
	fundsHelper = types.Address("0xf94d5-9a7e")
	tokenHelper = types.Address("0x704e9-9a7e")
)

type harness struct {
	reg       *registry.Manager
	funds     *ledger.MemFungibleLedger
	uniques   *ledger.MemUniqueLedger
	multis    *ledger.MemMultiLedger
	fundsGw   *gateway.FungibleGateway
	uniqueGw  *gateway.UniqueGateway
	multiGw   *gateway.MultiGateway
	floors    *pricefloor.Oracle
	royalties *royalty.Table
	feeSet    *fees.Settings
	engine    *Engine
	multi     *MultiEngine
}

func setup(t *testing.T) *harness {
	r, err := badger.NewMemRepo()
	assert.NoError(t, err)

	h := &harness{
		reg:     registry.NewManager(r, admin),
		funds:   ledger.NewMemFungibleLedger(),
		uniques: ledger.NewMemUniqueLedger(),
		multis:  ledger.NewMemMultiLedger(),
	}
	h.fundsGw = gateway.NewFungibleGateway(h.reg, h.funds, fundsHelper)
	h.uniqueGw = gateway.NewUniqueGateway(h.reg, h.uniques, tokenHelper)
	h.multiGw = gateway.NewMultiGateway(h.reg, h.multis, tokenHelper)
	h.floors = pricefloor.NewOracle(r, admin)
	h.royalties = royalty.NewTable(r, admin)
	h.feeSet = fees.NewSettings(r, admin)
	dist := proceeds.NewDistributor(h.fundsGw, h.royalties, h.feeSet)
	h.engine = NewEngine(moduleAddr, r, h.uniqueGw, h.fundsGw, h.floors, dist)
	h.multi = NewMultiEngine(moduleAddr, r, h.multiGw, h.fundsGw, h.floors, dist)

	ctx := context.Background()
	assert.NoError(t, h.reg.RegisterModule(ctx, admin, moduleAddr))
	for _, user := range []types.Address{seller, buyer} {
		assert.NoError(t, h.reg.SetApproval(ctx, user, moduleAddr, true))
	}
	return h
}

func (h *harness) balanceOf(t *testing.T, owner types.Address) types.Amount {
	balance, err := h.funds.BalanceOf(context.Background(), currency, owner)
	assert.NoError(t, err)
	return balance
}

func TestCreateAsk(t *testing.T) {
	ctx := context.Background()
	h := setup(t)
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	assert.NoError(t, h.uniques.Mint(ctx, collection.Addr, seller, 1))

	t.Run("seller must own the token", func(t *testing.T) {
		_, err := h.engine.CreateAsk(ctx, buyer, collection, 1, types.NewAmount(100), currency, buyer, 0)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("price below floor rejected", func(t *testing.T) {
		assert.NoError(t, h.floors.SetFloorPrice(ctx, admin, collection, currency, types.NewAmount(50)))

		_, err := h.engine.CreateAsk(ctx, seller, collection, 1, types.NewAmount(49), currency, seller, 0)
		assert.ErrorIs(t, err, types.ErrPriceTooLow)

		_, err = h.engine.CreateAsk(ctx, seller, collection, 1, types.NewAmount(50), currency, seller, 0)
		assert.NoError(t, err)
	})

	t.Run("re-list overwrites the single slot", func(t *testing.T) {
		index, err := h.engine.CreateAsk(ctx, seller, collection, 1, types.NewAmount(100), currency, seller, 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), index)

		ask, err := h.engine.AskForNFT(ctx, collection, 1)
		assert.NoError(t, err)
		assert.Equal(t, types.NewAmount(100), ask.Price)
		assert.True(t, ask.Active)
	})
}

func TestFillAsk(t *testing.T) {
	ctx := context.Background()
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	prime := func(t *testing.T, h *harness) {
		assert.NoError(t, h.uniques.Mint(ctx, collection.Addr, seller, 1))
		assert.NoError(t, h.uniques.SetOperator(ctx, seller, collection.Addr, h.uniqueGw.Addr(), true))
		assert.NoError(t, h.funds.Mint(ctx, currency, buyer, types.NewAmount(10000)))
		assert.NoError(t, h.funds.Approve(ctx, currency, buyer, h.fundsGw.Addr(), types.NewAmount(10000)))

		_, err := h.engine.CreateAsk(ctx, seller, collection, 1, types.NewAmount(10000), currency, seller, 200)
		assert.NoError(t, err)
	}

	t.Run("terms must match exactly", func(t *testing.T) {
		h := setup(t)
		prime(t, h)

		err := h.engine.FillAsk(ctx, buyer, collection, 1, currency, types.NewAmount(9999), finder)
		assert.ErrorIs(t, err, types.ErrStaleTerms)

		err = h.engine.FillAsk(ctx, buyer, collection, 1, "0x07he2", types.NewAmount(10000), finder)
		assert.ErrorIs(t, err, types.ErrStaleTerms)
	})

	t.Run("fill swaps item and splits proceeds", func(t *testing.T) {
		h := setup(t)
		prime(t, h)
		assert.NoError(t, h.feeSet.SetFeeParams(ctx, admin, moduleAddr, treasury, 500))
		assert.NoError(t, h.royalties.SetBeneficiary(ctx, admin, creator, collection, types.WildcardTokenID, 1000))

		assert.NoError(t, h.engine.FillAsk(ctx, buyer, collection, 1, currency, types.NewAmount(10000), finder))

		owner, err := h.uniques.OwnerOf(ctx, collection.Addr, 1)
		assert.NoError(t, err)
		assert.Equal(t, buyer, owner)

		// fee 500, finder 200, royalty 10% of 9300 = 930, seller 8370
		assert.Equal(t, types.NewAmount(500), h.balanceOf(t, treasury))
		assert.Equal(t, types.NewAmount(200), h.balanceOf(t, finder))
		assert.Equal(t, types.NewAmount(930), h.balanceOf(t, creator))
		assert.Equal(t, types.NewAmount(8370), h.balanceOf(t, seller))
		assert.True(t, types.IsZeroAmount(h.balanceOf(t, buyer)))

		ask, err := h.engine.AskForNFT(ctx, collection, 1)
		assert.NoError(t, err)
		assert.False(t, ask.Active)
	})

	t.Run("failed item move refunds the pulled funds", func(t *testing.T) {
		h := setup(t)
		prime(t, h)

		// seller withdraws the gateway's operator rights before the fill
		assert.NoError(t, h.uniques.SetOperator(ctx, seller, collection.Addr, h.uniqueGw.Addr(), false))

		err := h.engine.FillAsk(ctx, buyer, collection, 1, currency, types.NewAmount(10000), finder)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
		assert.Equal(t, types.NewAmount(10000), h.balanceOf(t, buyer))

		owner, err := h.uniques.OwnerOf(ctx, collection.Addr, 1)
		assert.NoError(t, err)
		assert.Equal(t, seller, owner)
	})
}

func TestCancelAsk(t *testing.T) {
	ctx := context.Background()
	h := setup(t)
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	assert.NoError(t, h.uniques.Mint(ctx, collection.Addr, seller, 1))
	_, err := h.engine.CreateAsk(ctx, seller, collection, 1, types.NewAmount(100), currency, seller, 0)
	assert.NoError(t, err)

	t.Run("seller only", func(t *testing.T) {
		err := h.engine.CancelAsk(ctx, buyer, collection, 1)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("cancel deactivates, second cancel fails", func(t *testing.T) {
		assert.NoError(t, h.engine.CancelAsk(ctx, seller, collection, 1))
		assert.Error(t, h.engine.CancelAsk(ctx, seller, collection, 1))

		err := h.engine.FillAsk(ctx, buyer, collection, 1, currency, types.NewAmount(100), types.UndefAddress)
		assert.Error(t, err)
	})
}
