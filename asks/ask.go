package asks

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/types"
	"github.com/modular-market/market/utils"
)

var log = logging.Logger("asks")

// singleAskIndex is the one ask slot a single-owner token has; re-listing
// overwrites it.
const singleAskIndex = uint64(1)

// Engine is the fixed-price listing module for single-owner tokens.
// Nothing is escrowed at creation; the seller keeps the item and the
// gateway approval until the ask fills.
type Engine struct {
	self   types.Address
	asks   repo.AskRepo
	tokens *gateway.UniqueGateway
	funds  *gateway.FungibleGateway
	floors *pricefloor.Oracle
	dist   *proceeds.Distributor
	locks  *utils.TokenMutex
}

func NewEngine(self types.Address, r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
	floors *pricefloor.Oracle, dist *proceeds.Distributor) *Engine {
	return &Engine{
		self:   self,
		asks:   r.AskRepo(),
		tokens: tokens,
		funds:  funds,
		floors: floors,
		dist:   dist,
		locks:  utils.NewTokenMutex(),
	}
}

// Addr is the module address users approve in the registry.
func (e *Engine) Addr() types.Address {
	return e.self
}

// CreateAsk lists a token the seller owns. A still-active ask for the
// same token by the same seller is overwritten in place.
func (e *Engine) CreateAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) {
	if collection.Class != types.ClassUnique {
		return 0, xerrors.Errorf("collection %s is not single-owner", collection)
	}
	if fundsRecipient.Empty() {
		return 0, xerrors.Errorf("funds recipient is empty")
	}
	if findersFeeBps > types.MaxBps {
		return 0, xerrors.Errorf("finders fee of %d bps exceeds %d", findersFeeBps, types.MaxBps)
	}

	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	owner, err := e.tokens.OwnerOf(ctx, collection.Addr, tokenID)
	if err != nil {
		return 0, err
	}
	if owner != seller {
		return 0, xerrors.Errorf("%s does not own %s/%s: %w", seller, collection, tokenID, types.ErrNotAuthorized)
	}

	if err := checkFloor(ctx, e.floors, collection, currency, price); err != nil {
		return 0, err
	}

	ask := &types.Ask{
		Collection:     collection,
		TokenID:        tokenID,
		Index:          singleAskIndex,
		Seller:         seller,
		Quantity:       1,
		Price:          types.SafeAmount(price),
		Currency:       currency,
		FundsRecipient: fundsRecipient,
		FindersFeeBps:  findersFeeBps,
		Active:         true,
	}
	if err := e.asks.SaveAsk(ctx, ask); err != nil {
		return 0, err
	}

	recordAsk(ctx, metrics.AskCreatedCount, collection, currency)
	log.Infow("ask created", "collection", collection, "tokenId", tokenID, "seller", seller, "price", price)
	return singleAskIndex, nil
}

// FillAsk buys the listed token. The buyer's funds are pulled into the
// module first; if the item cannot be moved the pull is unwound and
// nothing changes.
func (e *Engine) FillAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	currency types.Address, price types.Amount, finder types.Address) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	ask, err := e.asks.GetAsk(ctx, collection, tokenID, singleAskIndex)
	if err != nil {
		return err
	}
	if !ask.Active {
		return xerrors.Errorf("ask %s/%s is not active", collection, tokenID)
	}
	if err := checkTerms(ask.Currency, ask.Price, currency, price); err != nil {
		return err
	}

	if err := e.funds.Transfer(ctx, e.self, currency, buyer, e.self, ask.Price); err != nil {
		return err
	}
	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, ask.Seller, buyer, tokenID); err != nil {
		if refundErr := e.funds.Transfer(ctx, e.self, currency, e.self, buyer, ask.Price); refundErr != nil {
			log.Errorw("refund after failed item transfer", "buyer", buyer, "amount", ask.Price, "err", refundErr)
		}
		return err
	}

	if _, err := e.dist.Distribute(ctx, e.self, e.self, collection, tokenID, currency, ask.Price,
		finder, ask.FindersFeeBps, ask.FundsRecipient); err != nil {
		return err
	}

	ask.Active = false
	if err := e.asks.SaveAsk(ctx, ask); err != nil {
		return err
	}

	recordAsk(ctx, metrics.AskFilledCount, collection, currency)
	log.Infow("ask filled", "collection", collection, "tokenId", tokenID, "buyer", buyer, "price", ask.Price)
	return nil
}

// CancelAsk deactivates the ask; a second cancel fails.
func (e *Engine) CancelAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	ask, err := e.asks.GetAsk(ctx, collection, tokenID, singleAskIndex)
	if err != nil {
		return err
	}
	if !ask.Active {
		return xerrors.Errorf("ask %s/%s is not active", collection, tokenID)
	}
	if caller != ask.Seller {
		return xerrors.Errorf("%s is not the seller: %w", caller, types.ErrNotAuthorized)
	}

	ask.Active = false
	if err := e.asks.SaveAsk(ctx, ask); err != nil {
		return err
	}

	recordAsk(ctx, metrics.AskCancelledCount, collection, ask.Currency)
	log.Infow("ask cancelled", "collection", collection, "tokenId", tokenID)
	return nil
}

func (e *Engine) AskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Ask, error) {
	return e.asks.GetAsk(ctx, collection, tokenID, singleAskIndex)
}

func checkTerms(askCurrency types.Address, askPrice types.Amount, currency types.Address, price types.Amount) error {
	if currency != askCurrency || !types.SafeAmount(price).Equals(types.SafeAmount(askPrice)) {
		return xerrors.Errorf("got %s of %s, listing wants %s of %s: %w",
			price, currency, askPrice, askCurrency, types.ErrStaleTerms)
	}
	return nil
}

func checkFloor(ctx context.Context, floors *pricefloor.Oracle, collection types.Collection, currency types.Address, price types.Amount) error {
	floor, err := floors.FloorPrice(ctx, collection, currency)
	if err != nil {
		return err
	}
	if types.SafeAmount(price).LessThan(floor) {
		return xerrors.Errorf("price %s below floor %s for %s in %s: %w", price, floor, collection, currency, types.ErrPriceTooLow)
	}
	return nil
}

func recordAsk(ctx context.Context, measure *stats.Int64Measure, collection types.Collection, currency types.Address) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(metrics.CollectionTag, collection.String()),
		tag.Upsert(metrics.CurrencyTag, currency.String()),
	}, measure.M(1))
}
