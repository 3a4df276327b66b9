package auctions

import (
	"context"
	"time"

	"github.com/raulk/clock"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/config"
	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/types"
	"github.com/modular-market/market/utils"
)

// MultiEngine runs reserve auctions for multi-quantity tokens. Several
// auctions may run concurrently for the same (collection, token), each
// escrowing its own quantity out of the seller's balance; indexes are
// 1-based and never reused.
type MultiEngine struct {
	self     types.Address
	auctions repo.AuctionRepo
	tokens   *gateway.MultiGateway
	funds    *gateway.FungibleGateway
	floors   *pricefloor.Oracle
	dist     *proceeds.Distributor
	locks    *utils.TokenMutex
	clock    clock.Clock

	minIncrementBps uint16
	timeBuffer      time.Duration
}

func NewMultiEngine(self types.Address, r repo.Repo, tokens *gateway.MultiGateway, funds *gateway.FungibleGateway,
	floors *pricefloor.Oracle, dist *proceeds.Distributor, cfg *config.AuctionConfig, clk clock.Clock) *MultiEngine {
	return &MultiEngine{
		self:            self,
		auctions:        r.AuctionRepo(),
		tokens:          tokens,
		funds:           funds,
		floors:          floors,
		dist:            dist,
		locks:           utils.NewTokenMutex(),
		clock:           clk,
		minIncrementBps: cfg.MinBidIncrementBps,
		timeBuffer:      time.Duration(cfg.TimeBuffer),
	}
}

func (e *MultiEngine) Addr() types.Address {
	return e.self
}

// CreateAuction escrows `quantity` units with the module and appends a
// new auction index for the token.
func (e *MultiEngine) CreateAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	quantity uint64, duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address,
	startTime time.Time, currency types.Address) (uint64, error) {
	if collection.Class != types.ClassMulti {
		return 0, xerrors.Errorf("collection %s is not multi-quantity", collection)
	}
	if quantity == 0 {
		return 0, xerrors.Errorf("auction quantity is zero")
	}

	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	balance, err := e.tokens.BalanceOf(ctx, collection.Addr, seller, tokenID)
	if err != nil {
		return 0, err
	}
	if balance < quantity {
		return 0, xerrors.Errorf("%s holds %d of %s/%s, auctioning %d: %w",
			seller, balance, collection, tokenID, quantity, types.ErrNotEnoughTokens)
	}

	existing, err := e.auctions.ListAuctions(ctx, collection, tokenID)
	if err != nil {
		return 0, err
	}

	auction, err := newAuction(e.clock, e.floors, ctx, collection, tokenID, uint64(len(existing))+1,
		seller, quantity, duration, reserve, buyNow, fundsRecipient, startTime, currency)
	if err != nil {
		return 0, err
	}

	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, seller, e.self, tokenID, quantity); err != nil {
		return 0, err
	}

	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		if returnErr := e.tokens.Transfer(ctx, e.self, collection.Addr, e.self, seller, tokenID, quantity); returnErr != nil {
			log.Errorw("escrow return after failed auction save", "seller", seller, "err", returnErr)
		}
		return 0, err
	}

	record(ctx, metrics.AuctionCreatedCount, collection, currency)
	log.Infow("auction created", "collection", collection, "tokenId", tokenID, "index", auction.Index,
		"seller", seller, "quantity", quantity, "reserve", reserve, "ends", auction.EndTime)
	return auction.Index, nil
}

func (e *MultiEngine) CreateBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID,
	index uint64, amount types.Amount) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, index)
	if err != nil {
		return err
	}
	if err := checkBidWindow(auction, e.clock.Now()); err != nil {
		return err
	}
	if err := checkBidAmount(auction, amount, e.minIncrementBps); err != nil {
		return err
	}

	prevBidder, prevBid := auction.HighestBidder, auction.HighestBid
	if err := e.funds.Transfer(ctx, e.self, auction.Currency, bidder, e.self, amount); err != nil {
		return err
	}
	if err := e.refundBidder(ctx, auction.Currency, prevBidder, prevBid); err != nil {
		return err
	}

	auction.HighestBidder = bidder
	auction.HighestBid = types.SafeAmount(amount)
	auction.Status = types.AuctionActive

	if auction.BuyNowEnabled() && !amount.LessThan(auction.BuyNowPrice) {
		return e.settle(ctx, auction, types.AuctionBoughtNow)
	}

	if extendForLateBid(auction, e.clock.Now(), e.timeBuffer) {
		record(ctx, metrics.AuctionExtendedCount, collection, auction.Currency)
	}
	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		return err
	}

	record(ctx, metrics.AuctionBidCount, collection, auction.Currency)
	log.Infow("bid accepted", "collection", collection, "tokenId", tokenID, "index", index,
		"bidder", bidder, "amount", amount, "ends", auction.EndTime)
	return nil
}

func (e *MultiEngine) BuyNowAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	index uint64, amount types.Amount) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, index)
	if err != nil {
		return err
	}
	if err := checkBuyNow(auction, amount, e.clock.Now()); err != nil {
		return err
	}

	prevBidder, prevBid := auction.HighestBidder, auction.HighestBid
	if err := e.funds.Transfer(ctx, e.self, auction.Currency, buyer, e.self, amount); err != nil {
		return err
	}
	if err := e.refundBidder(ctx, auction.Currency, prevBidder, prevBid); err != nil {
		return err
	}

	auction.HighestBidder = buyer
	auction.HighestBid = types.SafeAmount(amount)
	return e.settle(ctx, auction, types.AuctionBoughtNow)
}

func (e *MultiEngine) SettleAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, index)
	if err != nil {
		return err
	}
	if err := checkSettleable(auction, e.clock.Now()); err != nil {
		return err
	}
	return e.settle(ctx, auction, types.AuctionSettled)
}

func (e *MultiEngine) CancelAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, index uint64) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, index)
	if err != nil {
		return err
	}
	if err := checkCancelable(auction, caller); err != nil {
		return err
	}

	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, e.self, auction.Seller, tokenID, auction.Quantity); err != nil {
		return err
	}

	auction.Status = types.AuctionCancelled
	auction.Escrowed = false
	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		// the items are re-escrowed when the record cannot be written
		if clawErr := e.tokens.Transfer(ctx, e.self, collection.Addr, auction.Seller, e.self, tokenID, auction.Quantity); clawErr != nil {
			log.Errorw("re-escrow after failed cancel save", "seller", auction.Seller, "err", clawErr)
		}
		return err
	}

	record(ctx, metrics.AuctionCancelledCount, collection, auction.Currency)
	log.Infow("auction cancelled", "collection", collection, "tokenId", tokenID, "index", index)
	return nil
}

func (e *MultiEngine) AuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	return e.auctions.GetAuction(ctx, collection, tokenID, index)
}

func (e *MultiEngine) AuctionsForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Auction, error) {
	return e.auctions.ListAuctions(ctx, collection, tokenID)
}

// AuctionsPerUser enumerates one seller's auctions for a token.
func (e *MultiEngine) AuctionsPerUser(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error) {
	return e.auctions.ListAuctionsBySeller(ctx, collection, tokenID, seller)
}

func (e *MultiEngine) getAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	auction, err := e.auctions.GetAuction(ctx, collection, tokenID, index)
	if err != nil {
		if xerrors.Is(err, repo.ErrNotFound) {
			return nil, xerrors.Errorf("no auction %s/%s/%d: %w", collection, tokenID, index, types.ErrAuctionNotActive)
		}
		return nil, err
	}
	return auction, nil
}

// settle finishes an auction whose winning funds already sit in module
// escrow.
func (e *MultiEngine) settle(ctx context.Context, auction *types.Auction, status types.AuctionStatus) error {
	if err := e.tokens.Transfer(ctx, e.self, auction.Collection.Addr, e.self, auction.HighestBidder,
		auction.TokenID, auction.Quantity); err != nil {
		return err
	}

	if _, err := e.dist.Distribute(ctx, e.self, e.self, auction.Collection, auction.TokenID, auction.Currency,
		auction.HighestBid, types.UndefAddress, 0, auction.FundsRecipient); err != nil {
		return err
	}

	auction.Status = status
	auction.Escrowed = false
	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		return err
	}

	if status == types.AuctionBoughtNow {
		record(ctx, metrics.AuctionBuyNowCount, auction.Collection, auction.Currency)
	} else {
		record(ctx, metrics.AuctionSettledCount, auction.Collection, auction.Currency)
	}
	log.Infow("auction closed", "collection", auction.Collection, "tokenId", auction.TokenID,
		"index", auction.Index, "status", status, "winner", auction.HighestBidder, "amount", auction.HighestBid)
	return nil
}

func (e *MultiEngine) refundBidder(ctx context.Context, currency, bidder types.Address, amount types.Amount) error {
	if bidder.Empty() {
		return nil
	}
	return e.funds.Transfer(ctx, e.self, currency, e.self, bidder, amount)
}
