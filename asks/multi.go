package asks

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/types"
	"github.com/modular-market/market/utils"
)

// MultiEngine lists multi-quantity tokens. Several concurrent asks may
// exist per (collection, token); their outstanding quantities may never
// exceed the seller's balance. Indexes are 1-based and never reused.
type MultiEngine struct {
	self   types.Address
	asks   repo.AskRepo
	tokens *gateway.MultiGateway
	funds  *gateway.FungibleGateway
	floors *pricefloor.Oracle
	dist   *proceeds.Distributor
	locks  *utils.TokenMutex
}

func NewMultiEngine(self types.Address, r repo.Repo, tokens *gateway.MultiGateway, funds *gateway.FungibleGateway,
	floors *pricefloor.Oracle, dist *proceeds.Distributor) *MultiEngine {
	return &MultiEngine{
		self:   self,
		asks:   r.AskRepo(),
		tokens: tokens,
		funds:  funds,
		floors: floors,
		dist:   dist,
		locks:  utils.NewTokenMutex(),
	}
}

func (e *MultiEngine) Addr() types.Address {
	return e.self
}

// CreateAsk lists `quantity` units at a flat total price for the lot.
// The seller's balance must cover this ask plus every still-active ask
// they already posted for the token, so concurrent asks never oversell.
func (e *MultiEngine) CreateAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	quantity uint64, price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) {
	if collection.Class != types.ClassMulti {
		return 0, xerrors.Errorf("collection %s is not multi-quantity", collection)
	}
	if quantity == 0 {
		return 0, xerrors.Errorf("ask quantity is zero")
	}
	if fundsRecipient.Empty() {
		return 0, xerrors.Errorf("funds recipient is empty")
	}
	if findersFeeBps > types.MaxBps {
		return 0, xerrors.Errorf("finders fee of %d bps exceeds %d", findersFeeBps, types.MaxBps)
	}

	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	balance, err := e.tokens.BalanceOf(ctx, collection.Addr, seller, tokenID)
	if err != nil {
		return 0, err
	}

	existing, err := e.asks.ListAsks(ctx, collection, tokenID)
	if err != nil {
		return 0, err
	}
	var outstanding uint64
	for _, ask := range existing {
		if ask.Active && ask.Seller == seller {
			outstanding += ask.Quantity
		}
	}
	if balance < outstanding+quantity {
		return 0, xerrors.Errorf("%s holds %d of %s/%s with %d already listed, asked %d: %w",
			seller, balance, collection, tokenID, outstanding, quantity, types.ErrNotEnoughTokens)
	}

	if err := checkFloor(ctx, e.floors, collection, currency, price); err != nil {
		return 0, err
	}

	ask := &types.Ask{
		Collection:     collection,
		TokenID:        tokenID,
		Index:          uint64(len(existing)) + 1,
		Seller:         seller,
		Quantity:       quantity,
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
	log.Infow("ask created", "collection", collection, "tokenId", tokenID, "index", ask.Index,
		"seller", seller, "quantity", quantity, "price", price)
	return ask.Index, nil
}

// FillAsk buys the whole ask at the listed price, which covers the full
// listed quantity.
func (e *MultiEngine) FillAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	askIndex uint64, currency types.Address, price types.Amount, finder types.Address) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	ask, err := e.asks.GetAsk(ctx, collection, tokenID, askIndex)
	if err != nil {
		return err
	}
	if !ask.Active {
		return xerrors.Errorf("ask %s/%s/%d is not active", collection, tokenID, askIndex)
	}
	if err := checkTerms(ask.Currency, ask.Price, currency, price); err != nil {
		return err
	}

	gross := ask.Price
	if err := e.funds.Transfer(ctx, e.self, currency, buyer, e.self, gross); err != nil {
		return err
	}
	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, ask.Seller, buyer, tokenID, ask.Quantity); err != nil {
		if refundErr := e.funds.Transfer(ctx, e.self, currency, e.self, buyer, gross); refundErr != nil {
			log.Errorw("refund after failed item transfer", "buyer", buyer, "amount", gross, "err", refundErr)
		}
		return err
	}

	if _, err := e.dist.Distribute(ctx, e.self, e.self, collection, tokenID, currency, gross,
		finder, ask.FindersFeeBps, ask.FundsRecipient); err != nil {
		return err
	}

	ask.Active = false
	if err := e.asks.SaveAsk(ctx, ask); err != nil {
		return err
	}

	recordAsk(ctx, metrics.AskFilledCount, collection, currency)
	log.Infow("ask filled", "collection", collection, "tokenId", tokenID, "index", askIndex,
		"buyer", buyer, "gross", gross)
	return nil
}

func (e *MultiEngine) CancelAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, askIndex uint64) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	ask, err := e.asks.GetAsk(ctx, collection, tokenID, askIndex)
	if err != nil {
		return err
	}
	if !ask.Active {
		return xerrors.Errorf("ask %s/%s/%d is not active", collection, tokenID, askIndex)
	}
	if caller != ask.Seller {
		return xerrors.Errorf("%s is not the seller: %w", caller, types.ErrNotAuthorized)
	}

	ask.Active = false
	if err := e.asks.SaveAsk(ctx, ask); err != nil {
		return err
	}

	recordAsk(ctx, metrics.AskCancelledCount, collection, ask.Currency)
	log.Infow("ask cancelled", "collection", collection, "tokenId", tokenID, "index", askIndex)
	return nil
}

func (e *MultiEngine) AskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, askIndex uint64) (*types.Ask, error) {
	return e.asks.GetAsk(ctx, collection, tokenID, askIndex)
}

func (e *MultiEngine) AsksForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Ask, error) {
	return e.asks.ListAsks(ctx, collection, tokenID)
}

// AsksForSeller returns the seller's asks for the token, active or not.
func (e *MultiEngine) AsksForSeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Ask, error) {
	all, err := e.asks.ListAsks(ctx, collection, tokenID)
	if err != nil {
		return nil, err
	}
	var out []*types.Ask
	for _, ask := range all {
		if ask.Seller == seller {
			out = append(out, ask)
		}
	}
	return out, nil
}
