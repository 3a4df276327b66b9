package offers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/fees"
	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/ledger"
	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/registry"
	"github.com/modular-market/market/royalty"
	"github.com/modular-market/market/types"
)

const (
	admin       = types.Address("0xad819")
	owner       = types.Address("0xa11ce")
	buyer       = types.Address("0xb0b")
	creator     = types.Address("0xc2ea7o2")
	currency    = types.Address("0xc04417")
	moduleAddr  = types.Address("0x0ffe25")
	fundsHelper = types.Address("0xf94d5-9a7e")
	tokenHelper = types.Address("0x704e9-9a7e")
)

type harness struct {
	funds     *ledger.MemFungibleLedger
	uniques   *ledger.MemUniqueLedger
	fundsGw   *gateway.FungibleGateway
	uniqueGw  *gateway.UniqueGateway
	royalties *royalty.Table
	engine    *Engine
}

func setup(t *testing.T) *harness {
	r, err := badger.NewMemRepo()
	assert.NoError(t, err)
	return setupWithRepo(t, r)
}

func setupWithRepo(t *testing.T, r repo.Repo) *harness {
	reg := registry.NewManager(r, admin)
	h := &harness{
		funds:   ledger.NewMemFungibleLedger(),
		uniques: ledger.NewMemUniqueLedger(),
	}
	h.fundsGw = gateway.NewFungibleGateway(reg, h.funds, fundsHelper)
	h.uniqueGw = gateway.NewUniqueGateway(reg, h.uniques, tokenHelper)
	h.royalties = royalty.NewTable(r, admin)
	dist := proceeds.NewDistributor(h.fundsGw, h.royalties, fees.NewSettings(r, admin))
	h.engine = NewEngine(moduleAddr, r, h.uniqueGw, h.fundsGw, dist)

	ctx := context.Background()
	assert.NoError(t, reg.RegisterModule(ctx, admin, moduleAddr))
	for _, user := range []types.Address{owner, buyer} {
		assert.NoError(t, reg.SetApproval(ctx, user, moduleAddr, true))
	}

	return h
}

func (h *harness) balanceOf(t *testing.T, who types.Address) types.Amount {
	balance, err := h.funds.BalanceOf(context.Background(), currency, who)
	assert.NoError(t, err)
	return balance
}

func prime(t *testing.T, h *harness, collection types.Collection) {
	ctx := context.Background()
	assert.NoError(t, h.uniques.Mint(ctx, collection.Addr, owner, 1))
	assert.NoError(t, h.uniques.SetOperator(ctx, owner, collection.Addr, h.uniqueGw.Addr(), true))
	assert.NoError(t, h.funds.Mint(ctx, currency, buyer, types.NewAmount(1000)))
	assert.NoError(t, h.funds.Approve(ctx, currency, buyer, h.fundsGw.Addr(), types.NewAmount(1000)))
}

func TestCreateOffer(t *testing.T) {
	ctx := context.Background()
	h := setup(t)
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")
	prime(t, h, collection)

	t.Run("escrows funds up front", func(t *testing.T) {
		index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), index)

		assert.Equal(t, types.NewAmount(600), h.balanceOf(t, buyer))
		assert.Equal(t, types.NewAmount(400), h.balanceOf(t, moduleAddr))
	})

	t.Run("indexes append per token", func(t *testing.T) {
		index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(100), 0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(2), index)
	})

	t.Run("underfunded buyer cannot offer", func(t *testing.T) {
		_, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(100000), 0)
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})
}

func TestFillOffer(t *testing.T) {
	ctx := context.Background()
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	t.Run("owner only", func(t *testing.T) {
		h := setup(t)
		prime(t, h, collection)
		index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
		assert.NoError(t, err)

		err = h.engine.FillOffer(ctx, buyer, collection, 1, index, currency, types.NewAmount(400), types.UndefAddress)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("terms must match", func(t *testing.T) {
		h := setup(t)
		prime(t, h, collection)
		index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
		assert.NoError(t, err)

		err = h.engine.FillOffer(ctx, owner, collection, 1, index, currency, types.NewAmount(300), types.UndefAddress)
		assert.ErrorIs(t, err, types.ErrStaleTerms)
	})

	t.Run("fill moves item and releases escrow", func(t *testing.T) {
		h := setup(t)
		prime(t, h, collection)
		assert.NoError(t, h.royalties.SetBeneficiary(ctx, admin, creator, collection, types.WildcardTokenID, 1000))

		index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
		assert.NoError(t, err)

		assert.NoError(t, h.engine.FillOffer(ctx, owner, collection, 1, index, currency, types.NewAmount(400), types.UndefAddress))

		tokenOwner, err := h.uniques.OwnerOf(ctx, collection.Addr, 1)
		assert.NoError(t, err)
		assert.Equal(t, buyer, tokenOwner)

		assert.Equal(t, types.NewAmount(40), h.balanceOf(t, creator))
		assert.Equal(t, types.NewAmount(360), h.balanceOf(t, owner))
		assert.True(t, types.IsZeroAmount(h.balanceOf(t, moduleAddr)))

		// consumed
		err = h.engine.FillOffer(ctx, owner, collection, 1, index, currency, types.NewAmount(400), types.UndefAddress)
		assert.Error(t, err)
	})
}

func TestCancelOffer(t *testing.T) {
	ctx := context.Background()
	h := setup(t)
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")
	prime(t, h, collection)

	index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
	assert.NoError(t, err)

	t.Run("buyer only", func(t *testing.T) {
		err := h.engine.CancelOffer(ctx, owner, collection, 1, index)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("refund in full, once", func(t *testing.T) {
		assert.NoError(t, h.engine.CancelOffer(ctx, buyer, collection, 1, index))
		assert.Equal(t, types.NewAmount(1000), h.balanceOf(t, buyer))
		assert.True(t, types.IsZeroAmount(h.balanceOf(t, moduleAddr)))

		// no double refund
		err := h.engine.CancelOffer(ctx, buyer, collection, 1, index)
		assert.Error(t, err)
		assert.Equal(t, types.NewAmount(1000), h.balanceOf(t, buyer))
	})
}

// flakyRepo fails record writes on demand while reads keep working.
type flakyRepo struct {
	repo.Repo
	failSaves bool
}

func (r *flakyRepo) OfferRepo() repo.OfferRepo {
	return &flakyOfferRepo{r.Repo.OfferRepo(), r}
}

type flakyOfferRepo struct {
	repo.OfferRepo
	parent *flakyRepo
}

func (o *flakyOfferRepo) SaveOffer(ctx context.Context, offer *types.Offer) error {
	if o.parent.failSaves {
		return xerrors.Errorf("datastore unavailable")
	}
	return o.OfferRepo.SaveOffer(ctx, offer)
}

func TestCancelOfferFailedSaveKeepsEscrow(t *testing.T) {
	ctx := context.Background()
	base, err := badger.NewMemRepo()
	assert.NoError(t, err)
	flaky := &flakyRepo{Repo: base}
	h := setupWithRepo(t, flaky)
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")
	prime(t, h, collection)

	index, err := h.engine.CreateOffer(ctx, buyer, collection, 1, currency, types.NewAmount(400), 0)
	assert.NoError(t, err)

	flaky.failSaves = true
	err = h.engine.CancelOffer(ctx, buyer, collection, 1, index)
	assert.Error(t, err)

	// the refund was pulled back and the offer still stands
	assert.Equal(t, types.NewAmount(400), h.balanceOf(t, moduleAddr))
	assert.Equal(t, types.NewAmount(600), h.balanceOf(t, buyer))
	offer, err := h.engine.OfferForNFT(ctx, collection, 1, index)
	assert.NoError(t, err)
	assert.True(t, offer.Active)
	assert.True(t, offer.Escrowed)

	flaky.failSaves = false
	assert.NoError(t, h.engine.CancelOffer(ctx, buyer, collection, 1, index))
	assert.Equal(t, types.NewAmount(1000), h.balanceOf(t, buyer))
}
