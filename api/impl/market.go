package impl

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/modular-market/market/api"
	"github.com/modular-market/market/asks"
	"github.com/modular-market/market/auctions"
	"github.com/modular-market/market/events"
	"github.com/modular-market/market/fees"
	"github.com/modular-market/market/offers"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/registry"
	"github.com/modular-market/market/royalty"
	"github.com/modular-market/market/types"
)

var _ api.MarketFullNode = (*MarketNodeImpl)(nil)

// MarketNodeImpl glues the trading modules behind the RPC surface and
// publishes a market event after each state-changing call succeeds.
type MarketNodeImpl struct {
	fx.In

	Registry  *registry.Manager
	Floors    *pricefloor.Oracle
	Royalties *royalty.Table
	Fees      *fees.Settings
	Bus       *events.Bus

	Asks          *asks.Engine
	MultiAsks     *asks.MultiEngine
	Offers        *offers.Engine
	Auctions      *auctions.Engine
	MultiAuctions *auctions.MultiEngine
}

// NewMarketNode lets the DI container fill in the dependency set.
func NewMarketNode(m MarketNodeImpl) api.MarketFullNode {
	return &m
}

func (m *MarketNodeImpl) RegisterModule(ctx context.Context, caller, module types.Address) error {
	return m.Registry.RegisterModule(ctx, caller, module)
}

func (m *MarketNodeImpl) IsModuleRegistered(ctx context.Context, module types.Address) (bool, error) {
	return m.Registry.IsRegistered(ctx, module)
}

func (m *MarketNodeImpl) SetApprovalForModule(ctx context.Context, user, module types.Address, approved bool) error {
	return m.Registry.SetApproval(ctx, user, module, approved)
}

func (m *MarketNodeImpl) SetBatchApprovalForModules(ctx context.Context, user types.Address, modules []types.Address, approved bool) error {
	return m.Registry.SetBatchApproval(ctx, user, modules, approved)
}

func (m *MarketNodeImpl) IsModuleApproved(ctx context.Context, user, module types.Address) (bool, error) {
	return m.Registry.IsApproved(ctx, user, module)
}

func (m *MarketNodeImpl) SetFloorPrice(ctx context.Context, caller types.Address, collection types.Collection, currency types.Address, price types.Amount) error {
	return m.Floors.SetFloorPrice(ctx, caller, collection, currency, price)
}

func (m *MarketNodeImpl) FloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (types.Amount, error) {
	return m.Floors.FloorPrice(ctx, collection, currency)
}

func (m *MarketNodeImpl) SetRoyaltyBeneficiary(ctx context.Context, caller, beneficiary types.Address, collection types.Collection, tokenID types.TokenID, bps uint16) error {
	return m.Royalties.SetBeneficiary(ctx, caller, beneficiary, collection, tokenID, bps)
}

func (m *MarketNodeImpl) SetProtocolFee(ctx context.Context, caller, module, recipient types.Address, bps uint16) error {
	return m.Fees.SetFeeParams(ctx, caller, module, recipient, bps)
}

func (m *MarketNodeImpl) ProtocolFee(ctx context.Context, module types.Address) (*types.FeeParams, error) {
	return m.Fees.FeeParams(ctx, module)
}

func (m *MarketNodeImpl) CreateAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) {
	index, err := m.Asks.CreateAsk(ctx, seller, collection, tokenID, price, currency, fundsRecipient, findersFeeBps)
	if err != nil {
		return 0, err
	}
	m.publish(events.AskCreated, m.Asks.Addr(), collection, tokenID, index, seller, price)
	return index, nil
}

func (m *MarketNodeImpl) FillAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	currency types.Address, price types.Amount, finder types.Address) error {
	if err := m.Asks.FillAsk(ctx, buyer, collection, tokenID, currency, price, finder); err != nil {
		return err
	}
	m.publish(events.AskFilled, m.Asks.Addr(), collection, tokenID, 1, buyer, price)
	return nil
}

func (m *MarketNodeImpl) CancelAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error {
	if err := m.Asks.CancelAsk(ctx, caller, collection, tokenID); err != nil {
		return err
	}
	m.publish(events.AskCancelled, m.Asks.Addr(), collection, tokenID, 1, caller, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) AskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Ask, error) {
	return m.Asks.AskForNFT(ctx, collection, tokenID)
}

func (m *MarketNodeImpl) CreateMultiAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	quantity uint64, price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) {
	index, err := m.MultiAsks.CreateAsk(ctx, seller, collection, tokenID, quantity, price, currency, fundsRecipient, findersFeeBps)
	if err != nil {
		return 0, err
	}
	m.publish(events.AskCreated, m.MultiAsks.Addr(), collection, tokenID, index, seller, price)
	return index, nil
}

func (m *MarketNodeImpl) FillMultiAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	askIndex uint64, currency types.Address, price types.Amount, finder types.Address) error {
	if err := m.MultiAsks.FillAsk(ctx, buyer, collection, tokenID, askIndex, currency, price, finder); err != nil {
		return err
	}
	m.publish(events.AskFilled, m.MultiAsks.Addr(), collection, tokenID, askIndex, buyer, price)
	return nil
}

func (m *MarketNodeImpl) CancelMultiAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, askIndex uint64) error {
	if err := m.MultiAsks.CancelAsk(ctx, caller, collection, tokenID, askIndex); err != nil {
		return err
	}
	m.publish(events.AskCancelled, m.MultiAsks.Addr(), collection, tokenID, askIndex, caller, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) MultiAskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, askIndex uint64) (*types.Ask, error) {
	return m.MultiAsks.AskForNFT(ctx, collection, tokenID, askIndex)
}

func (m *MarketNodeImpl) MultiAsksForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Ask, error) {
	return m.MultiAsks.AsksForNFT(ctx, collection, tokenID)
}

func (m *MarketNodeImpl) MultiAsksForSeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Ask, error) {
	return m.MultiAsks.AsksForSeller(ctx, collection, tokenID, seller)
}

func (m *MarketNodeImpl) CreateOffer(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID,
	currency types.Address, amount types.Amount, findersFeeBps uint16) (uint64, error) {
	index, err := m.Offers.CreateOffer(ctx, buyer, collection, tokenID, currency, amount, findersFeeBps)
	if err != nil {
		return 0, err
	}
	m.publish(events.OfferCreated, m.Offers.Addr(), collection, tokenID, index, buyer, amount)
	return index, nil
}

func (m *MarketNodeImpl) FillOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID,
	offerIndex uint64, currency types.Address, amount types.Amount, finder types.Address) error {
	if err := m.Offers.FillOffer(ctx, caller, collection, tokenID, offerIndex, currency, amount, finder); err != nil {
		return err
	}
	m.publish(events.OfferFilled, m.Offers.Addr(), collection, tokenID, offerIndex, caller, amount)
	return nil
}

func (m *MarketNodeImpl) CancelOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, offerIndex uint64) error {
	if err := m.Offers.CancelOffer(ctx, caller, collection, tokenID, offerIndex); err != nil {
		return err
	}
	m.publish(events.OfferCancelled, m.Offers.Addr(), collection, tokenID, offerIndex, caller, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) OfferForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, offerIndex uint64) (*types.Offer, error) {
	return m.Offers.OfferForNFT(ctx, collection, tokenID, offerIndex)
}

func (m *MarketNodeImpl) OffersForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Offer, error) {
	return m.Offers.OffersForNFT(ctx, collection, tokenID)
}

func (m *MarketNodeImpl) CreateAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address, startTime time.Time, currency types.Address) (uint64, error) {
	index, err := m.Auctions.CreateAuction(ctx, seller, collection, tokenID, duration, reserve, buyNow, fundsRecipient, startTime, currency)
	if err != nil {
		return 0, err
	}
	m.publish(events.AuctionCreated, m.Auctions.Addr(), collection, tokenID, index, seller, reserve)
	return index, nil
}

func (m *MarketNodeImpl) CreateBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error {
	if err := m.Auctions.CreateBid(ctx, bidder, collection, tokenID, amount); err != nil {
		return err
	}
	m.publish(events.AuctionBid, m.Auctions.Addr(), collection, tokenID, 1, bidder, amount)
	return nil
}

func (m *MarketNodeImpl) BuyNowAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error {
	if err := m.Auctions.BuyNowAuction(ctx, buyer, collection, tokenID, amount); err != nil {
		return err
	}
	m.publish(events.AuctionBoughtNow, m.Auctions.Addr(), collection, tokenID, 1, buyer, amount)
	return nil
}

func (m *MarketNodeImpl) SettleAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID) error {
	if err := m.Auctions.SettleAuction(ctx, collection, tokenID); err != nil {
		return err
	}
	m.publish(events.AuctionSettled, m.Auctions.Addr(), collection, tokenID, 1, types.UndefAddress, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) CancelAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error {
	if err := m.Auctions.CancelAuction(ctx, caller, collection, tokenID); err != nil {
		return err
	}
	m.publish(events.AuctionCancelled, m.Auctions.Addr(), collection, tokenID, 1, caller, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) AuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Auction, error) {
	return m.Auctions.AuctionForNFT(ctx, collection, tokenID)
}

func (m *MarketNodeImpl) CreateMultiAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID,
	quantity uint64, duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address, startTime time.Time, currency types.Address) (uint64, error) {
	index, err := m.MultiAuctions.CreateAuction(ctx, seller, collection, tokenID, quantity, duration, reserve, buyNow, fundsRecipient, startTime, currency)
	if err != nil {
		return 0, err
	}
	m.publish(events.AuctionCreated, m.MultiAuctions.Addr(), collection, tokenID, index, seller, reserve)
	return index, nil
}

func (m *MarketNodeImpl) CreateMultiBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID, index uint64, amount types.Amount) error {
	if err := m.MultiAuctions.CreateBid(ctx, bidder, collection, tokenID, index, amount); err != nil {
		return err
	}
	m.publish(events.AuctionBid, m.MultiAuctions.Addr(), collection, tokenID, index, bidder, amount)
	return nil
}

func (m *MarketNodeImpl) BuyNowMultiAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, index uint64, amount types.Amount) error {
	if err := m.MultiAuctions.BuyNowAuction(ctx, buyer, collection, tokenID, index, amount); err != nil {
		return err
	}
	m.publish(events.AuctionBoughtNow, m.MultiAuctions.Addr(), collection, tokenID, index, buyer, amount)
	return nil
}

func (m *MarketNodeImpl) SettleMultiAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) error {
	if err := m.MultiAuctions.SettleAuction(ctx, collection, tokenID, index); err != nil {
		return err
	}
	m.publish(events.AuctionSettled, m.MultiAuctions.Addr(), collection, tokenID, index, types.UndefAddress, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) CancelMultiAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, index uint64) error {
	if err := m.MultiAuctions.CancelAuction(ctx, caller, collection, tokenID, index); err != nil {
		return err
	}
	m.publish(events.AuctionCancelled, m.MultiAuctions.Addr(), collection, tokenID, index, caller, types.ZeroAmount())
	return nil
}

func (m *MarketNodeImpl) MultiAuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	return m.MultiAuctions.AuctionForNFT(ctx, collection, tokenID, index)
}

func (m *MarketNodeImpl) MultiAuctionsForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Auction, error) {
	return m.MultiAuctions.AuctionsForNFT(ctx, collection, tokenID)
}

func (m *MarketNodeImpl) MultiAuctionsForSeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error) {
	return m.MultiAuctions.AuctionsPerUser(ctx, collection, tokenID, seller)
}

func (m *MarketNodeImpl) publish(typ events.EventType, module types.Address, collection types.Collection,
	tokenID types.TokenID, index uint64, actor types.Address, amount types.Amount) {
	m.Bus.Publish(events.MarketEvent{
		Type:       typ,
		Module:     module,
		Collection: collection,
		TokenID:    tokenID,
		Index:      index,
		Actor:      actor,
		Amount:     amount,
	})
}
