package auctions

import (
	"context"
	"time"

	fbig "github.com/filecoin-project/go-state-types/big"
	logging "github.com/ipfs/go-log/v2"
	"github.com/raulk/clock"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
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

var log = logging.Logger("auctions")

// singleAuctionIndex is the one auction slot a single-owner token has; a
// terminal auction's slot may be reused by a fresh listing.
const singleAuctionIndex = uint64(1)

// Engine runs reserve auctions for single-owner tokens: at most one live
// auction per token, the item escrowed with the module from creation to
// settlement.
type Engine struct {
	self     types.Address
	auctions repo.AuctionRepo
	tokens   *gateway.UniqueGateway
	funds    *gateway.FungibleGateway
	floors   *pricefloor.Oracle
	dist     *proceeds.Distributor
	locks    *utils.TokenMutex
	clock    clock.Clock

	minIncrementBps uint16
	timeBuffer      time.Duration
}

func NewEngine(self types.Address, r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
	floors *pricefloor.Oracle, dist *proceeds.Distributor, cfg *config.AuctionConfig, clk clock.Clock) *Engine {
	return &Engine{
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

func (e *Engine) Addr() types.Address {
	return e.self
}

// CreateAuction escrows the token and records the auction in state
// Created. A zero startTime means "now"; a zero buyNow price disables
// the instant-buy path.
func (e *Engine) CreateAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address, startTime time.Time, currency types.Address) (uint64, error) {
	if collection.Class != types.ClassUnique {
		return 0, xerrors.Errorf("collection %s is not single-owner", collection)
	}

	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	existing, err := e.auctions.GetAuction(ctx, collection, tokenID, singleAuctionIndex)
	if err != nil && !xerrors.Is(err, repo.ErrNotFound) {
		return 0, err
	}
	if existing != nil && !existing.Status.Terminal() {
		return 0, xerrors.Errorf("auction for %s/%s already exists", collection, tokenID)
	}

	auction, err := newAuction(e.clock, e.floors, ctx, collection, tokenID, singleAuctionIndex,
		seller, 1, duration, reserve, buyNow, fundsRecipient, startTime, currency)
	if err != nil {
		return 0, err
	}

	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, seller, e.self, tokenID); err != nil {
		return 0, err
	}

	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		if returnErr := e.tokens.Transfer(ctx, e.self, collection.Addr, e.self, seller, tokenID); returnErr != nil {
			log.Errorw("escrow return after failed auction save", "seller", seller, "err", returnErr)
		}
		return 0, err
	}

	record(ctx, metrics.AuctionCreatedCount, collection, currency)
	log.Infow("auction created", "collection", collection, "tokenId", tokenID, "seller", seller,
		"reserve", reserve, "buyNow", buyNow, "ends", auction.EndTime)
	return singleAuctionIndex, nil
}

// CreateBid places a bid. The new bidder's funds are pulled before the
// previous bidder is refunded, so at every moment exactly one bidder's
// funds sit in escrow. A bid at or above the buy-now price settles the
// auction immediately.
func (e *Engine) CreateBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, singleAuctionIndex)
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
	log.Infow("bid accepted", "collection", collection, "tokenId", tokenID, "bidder", bidder,
		"amount", amount, "ends", auction.EndTime)
	return nil
}

// BuyNowAuction settles the auction immediately at the offered amount,
// with or without prior bids.
func (e *Engine) BuyNowAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, singleAuctionIndex)
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

// SettleAuction closes a finished auction: item to the highest bidder,
// the winning bid through the proceeds pipeline.
func (e *Engine) SettleAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, singleAuctionIndex)
	if err != nil {
		return err
	}
	if err := checkSettleable(auction, e.clock.Now()); err != nil {
		return err
	}
	return e.settle(ctx, auction, types.AuctionSettled)
}

// CancelAuction is seller-only and allowed only before the first bid;
// the escrowed item goes back to the seller.
func (e *Engine) CancelAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error {
	unlock := e.locks.Lock(collection, tokenID)
	defer unlock()

	auction, err := e.getAuction(ctx, collection, tokenID, singleAuctionIndex)
	if err != nil {
		return err
	}
	if err := checkCancelable(auction, caller); err != nil {
		return err
	}

	if err := e.tokens.Transfer(ctx, e.self, collection.Addr, e.self, auction.Seller, tokenID); err != nil {
		return err
	}

	auction.Status = types.AuctionCancelled
	auction.Escrowed = false
	if err := e.auctions.SaveAuction(ctx, auction); err != nil {
		// the item is re-escrowed when the record cannot be written
		if clawErr := e.tokens.Transfer(ctx, e.self, collection.Addr, auction.Seller, e.self, tokenID); clawErr != nil {
			log.Errorw("re-escrow after failed cancel save", "seller", auction.Seller, "err", clawErr)
		}
		return err
	}

	record(ctx, metrics.AuctionCancelledCount, collection, auction.Currency)
	log.Infow("auction cancelled", "collection", collection, "tokenId", tokenID)
	return nil
}

func (e *Engine) AuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Auction, error) {
	return e.auctions.GetAuction(ctx, collection, tokenID, singleAuctionIndex)
}

func (e *Engine) getAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	auction, err := e.auctions.GetAuction(ctx, collection, tokenID, index)
	if err != nil {
		if xerrors.Is(err, repo.ErrNotFound) {
			return nil, xerrors.Errorf("no auction for %s/%s: %w", collection, tokenID, types.ErrAuctionNotActive)
		}
		return nil, err
	}
	return auction, nil
}

// settle finishes an auction whose winning funds already sit in module
// escrow. The item moves first; the payout pipeline runs on the full
// winning amount.
func (e *Engine) settle(ctx context.Context, auction *types.Auction, status types.AuctionStatus) error {
	if err := e.tokens.Transfer(ctx, e.self, auction.Collection.Addr, e.self, auction.HighestBidder, auction.TokenID); err != nil {
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
		"status", status, "winner", auction.HighestBidder, "amount", auction.HighestBid)
	return nil
}

func (e *Engine) refundBidder(ctx context.Context, currency, bidder types.Address, amount types.Amount) error {
	if bidder.Empty() {
		return nil
	}
	return e.funds.Transfer(ctx, e.self, currency, e.self, bidder, amount)
}

func newAuction(clk clock.Clock, floors *pricefloor.Oracle, ctx context.Context, collection types.Collection, tokenID types.TokenID,
	index uint64, seller types.Address, quantity uint64, duration time.Duration, reserve, buyNow types.Amount,
	fundsRecipient types.Address, startTime time.Time, currency types.Address) (*types.Auction, error) {
	if duration <= 0 {
		return nil, xerrors.Errorf("auction duration is zero")
	}
	if fundsRecipient.Empty() {
		return nil, xerrors.Errorf("funds recipient is empty")
	}

	reserve = types.SafeAmount(reserve)
	buyNow = types.SafeAmount(buyNow)
	if !buyNow.IsZero() && buyNow.LessThan(reserve) {
		return nil, xerrors.Errorf("buy-now price %s below reserve %s", buyNow, reserve)
	}

	floor, err := floors.FloorPrice(ctx, collection, currency)
	if err != nil {
		return nil, err
	}
	if reserve.LessThan(floor) {
		return nil, xerrors.Errorf("reserve %s below floor %s for %s in %s: %w",
			reserve, floor, collection, currency, types.ErrPriceTooLow)
	}

	if startTime.IsZero() {
		startTime = clk.Now()
	}

	return &types.Auction{
		Collection:     collection,
		TokenID:        tokenID,
		Index:          index,
		Seller:         seller,
		Quantity:       quantity,
		Duration:       duration,
		ReservePrice:   reserve,
		BuyNowPrice:    buyNow,
		FundsRecipient: fundsRecipient,
		StartTime:      startTime,
		EndTime:        startTime.Add(duration),
		Currency:       currency,
		HighestBid:     types.ZeroAmount(),
		Status:         types.AuctionCreated,
		Escrowed:       true,
	}, nil
}

func checkBidWindow(auction *types.Auction, now time.Time) error {
	if auction.Status.Terminal() {
		return xerrors.Errorf("auction %s/%s/%d is %s: %w",
			auction.Collection, auction.TokenID, auction.Index, auction.Status, types.ErrAuctionNotActive)
	}
	if now.Before(auction.StartTime) {
		return xerrors.Errorf("auction starts at %s: %w", auction.StartTime, types.ErrAuctionNotActive)
	}
	if now.After(auction.EndTime) {
		return xerrors.Errorf("auction ended at %s: %w", auction.EndTime, types.ErrAuctionNotActive)
	}
	return nil
}

func checkBidAmount(auction *types.Auction, amount types.Amount, minIncrementBps uint16) error {
	amount = types.SafeAmount(amount)
	if !auction.HasBid() {
		if amount.LessThan(auction.ReservePrice) {
			return xerrors.Errorf("bid %s below reserve %s: %w", amount, auction.ReservePrice, types.ErrMinimumBidNotMet)
		}
		return nil
	}

	minBid := fbig.Add(auction.HighestBid, types.ShareOf(auction.HighestBid, minIncrementBps))
	if amount.LessThan(minBid) {
		return xerrors.Errorf("bid %s below minimum %s: %w", amount, minBid, types.ErrMinimumBidNotMet)
	}
	return nil
}

func checkBuyNow(auction *types.Auction, amount types.Amount, now time.Time) error {
	if !auction.BuyNowEnabled() {
		return xerrors.Errorf("auction %s/%s/%d has no buy-now price: %w",
			auction.Collection, auction.TokenID, auction.Index, types.ErrBuyNowNotActive)
	}
	if err := checkBidWindow(auction, now); err != nil {
		return xerrors.Errorf("%s: %w", err, types.ErrBuyNowNotActive)
	}
	if types.SafeAmount(amount).LessThan(auction.BuyNowPrice) {
		return xerrors.Errorf("%s below buy-now price %s: %w", amount, auction.BuyNowPrice, types.ErrBuyNowNotActive)
	}
	return nil
}

func checkSettleable(auction *types.Auction, now time.Time) error {
	if auction.Status.Terminal() {
		return xerrors.Errorf("auction %s/%s/%d is %s: %w",
			auction.Collection, auction.TokenID, auction.Index, auction.Status, types.ErrAuctionNotActive)
	}
	if !auction.HasBid() {
		return xerrors.Errorf("auction %s/%s/%d has no bid to settle: %w",
			auction.Collection, auction.TokenID, auction.Index, types.ErrAuctionNotActive)
	}
	if now.Before(auction.EndTime) {
		return xerrors.Errorf("auction runs until %s: %w", auction.EndTime, types.ErrAuctionNotActive)
	}
	return nil
}

func checkCancelable(auction *types.Auction, caller types.Address) error {
	if caller != auction.Seller {
		return xerrors.Errorf("%s is not the seller: %w", caller, types.ErrNotAuthorized)
	}
	if auction.Status.Terminal() {
		return xerrors.Errorf("auction %s/%s/%d is %s",
			auction.Collection, auction.TokenID, auction.Index, auction.Status)
	}
	if auction.HasBid() {
		return xerrors.Errorf("auction %s/%s/%d already has a bid",
			auction.Collection, auction.TokenID, auction.Index)
	}
	return nil
}

// extendForLateBid pushes the end time out when a bid lands inside the
// anti-snipe buffer; reports whether it did.
func extendForLateBid(auction *types.Auction, now time.Time, buffer time.Duration) bool {
	if buffer <= 0 || auction.EndTime.Sub(now) >= buffer {
		return false
	}
	auction.EndTime = now.Add(buffer)
	return true
}

func record(ctx context.Context, measure *stats.Int64Measure, collection types.Collection, currency types.Address) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(metrics.CollectionTag, collection.String()),
		tag.Upsert(metrics.CurrencyTag, currency.String()),
	}, measure.M(1))
}
