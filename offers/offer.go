package offers

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/types"
	"github.com/modular-market/market/utils"
)

var log = logging.Logger("offers")

// Engine is the buyer-side module for single-owner tokens: offers are
// funds-first, the full amount is escrowed with the module at creation
// and held until the owner fills or the buyer cancels.
type Engine struct {
	self   types.Address
	offers repo.OfferRepo
	tokens *gateway.UniqueGateway
	funds  *gateway.FungibleGateway
	dist   *proceeds.Distributor
	locks  *utils.TokenMutex
}

func NewEngine(self types.Address, r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
	dist *proceeds.Distributor) *Engine {
	return &Engine{
		self:   self,
		offers: r.OfferRepo(),
		tokens: tokens,
		funds:  funds,
		dist:   dist,
		locks:  utils.NewTokenMutex(),
	}
}

func (e *Engine) Addr() types.Address {
	return e.self
}

// CreateOffer escrows the offered amount immediately and returns the
// 1-based offer index.
func (e *Engine) CreateOffer(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	currency types.Address, amount types.Amount, findersFeeBps uint16) (uint64, error) {
	if collection.Class != types.ClassUnique {
		return 0, xerrors.Errorf("collection %s is not single-owner", collection)
	}
	if types.IsZeroAmount(amount) {
		return 0, xerrors.Errorf("offer amount is zero")
	}
	if findersFeeBps > types.MaxBps {
		return 0, xerrors.Errorf("finders fee of %d bps exceeds %d", findersFeeBps, types.MaxBps)
	}

	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	existing, err := e.offers.ListOffers(ctx, collection, tokenID)
	if err != nil {
		return 0, err
	}

	if err := e.funds.Transfer(ctx, e.self, currency, buyer, e.self, amount); err != nil {
		return 0, err
	}

	offer := &types.Offer{
		Collection:    collection,
		TokenID:       tokenID,
		Index:         uint64(len(existing)) + 1,
		Buyer:         buyer,
		Currency:      currency,
		Amount:        types.SafeAmount(amount),
		FindersFeeBps: findersFeeBps,
		Escrowed:      true,
		Active:        true,
	}
	if err := e.offers.SaveOffer(ctx, offer); err != nil {
		// escrow is returned when the record cannot be written
		if refundErr := e.funds.Transfer(ctx, e.self, currency, e.self, buyer, amount); refundErr != nil {
			log.Errorw("refund after failed offer save", "buyer", buyer, "amount", amount, "err", refundErr)
		}
		return 0, err
	}

	recordOffer(ctx, metrics.OfferCreatedCount, collection, currency)
	log.Infow("offer created", "collection", collection, "tokenId", tokenID, "index", offer.Index,
		"buyer", buyer, "amount", amount)
	return offer.Index, nil
}

// FillOffer sells the token into an offer. Only the current owner may
// fill; the stored terms must be matched exactly.
func (e *Engine) FillOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID,
	offerIndex uint64, currency types.Address, amount types.Amount, finder types.Address) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	offer, err := e.offers.GetOffer(ctx, collection, tokenID, offerIndex)
	if err != nil {
		return err
	}
	if !offer.Active {
		return xerrors.Errorf("offer %s/%s/%d is not active", collection, tokenID, offerIndex)
	}
	if currency != offer.Currency || !types.SafeAmount(amount).Equals(offer.Amount) {
		return xerrors.Errorf("got %s of %s, offer holds %s of %s: %w",
			amount, currency, offer.Amount, offer.Currency, types.ErrStaleTerms)
	}

	owner, err := e.tokens.OwnerOf(ctx, collection.Addr, tokenID)
	if err != nil {
		return err
	}
	if owner != caller {
		return xerrors.Errorf("%s does not own %s/%s: %w", caller, collection, tokenID, types.ErrNotAuthorized)
	}

	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, caller, offer.Buyer, tokenID); err != nil {
		return err
	}

	if _, err := e.dist.Distribute(ctx, e.self, e.self, collection, tokenID, offer.Currency, offer.Amount,
		finder, offer.FindersFeeBps, caller); err != nil {
		return err
	}

	offer.Active = false
	offer.Escrowed = false
	if err := e.offers.SaveOffer(ctx, offer); err != nil {
		return err
	}

	recordOffer(ctx, metrics.OfferFilledCount, collection, currency)
	log.Infow("offer filled", "collection", collection, "tokenId", tokenID, "index", offerIndex,
		"seller", caller, "amount", offer.Amount)
	return nil
}

// CancelOffer refunds the escrow in full; a second cancel fails.
func (e *Engine) CancelOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, offerIndex uint64) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	offer, err := e.offers.GetOffer(ctx, collection, tokenID, offerIndex)
	if err != nil {
		return err
	}
	if !offer.Active {
		return xerrors.Errorf("offer %s/%s/%d is not active", collection, tokenID, offerIndex)
	}
	if caller != offer.Buyer {
		return xerrors.Errorf("%s is not the buyer: %w", caller, types.ErrNotAuthorized)
	}

	if err := e.funds.Transfer(ctx, e.self, offer.Currency, e.self, offer.Buyer, offer.Amount); err != nil {
		return err
	}

	offer.Active = false
	offer.Escrowed = false
	if err := e.offers.SaveOffer(ctx, offer); err != nil {
		// the refund is pulled back when the record cannot be written
		if clawErr := e.funds.Transfer(ctx, e.self, offer.Currency, offer.Buyer, e.self, offer.Amount); clawErr != nil {
			log.Errorw("re-escrow after failed cancel save", "buyer", offer.Buyer, "amount", offer.Amount, "err", clawErr)
		}
		return err
	}

	recordOffer(ctx, metrics.OfferCancelledCount, collection, offer.Currency)
	log.Infow("offer cancelled", "collection", collection, "tokenId", tokenID, "index", offerIndex)
	return nil
}

func (e *Engine) OfferForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, offerIndex uint64) (*types.Offer, error) {
	return e.offers.GetOffer(ctx, collection, tokenID, offerIndex)
}

func (e *Engine) OffersForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Offer, error) {
	return e.offers.ListOffers(ctx, collection, tokenID)
}

func recordOffer(ctx context.Context, measure *stats.Int64Measure, collection types.Collection, currency types.Address) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(metrics.CollectionTag, collection.String()),
		tag.Upsert(metrics.CurrencyTag, currency.String()),
	}, measure.M(1))
}
