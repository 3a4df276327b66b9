package api

import (
	"context"
	"time"

	"github.com/modular-market/market/types"
)

// MarketFullNode is the complete JSON-RPC surface of the market daemon.
// Callers are identified by the address they pass explicitly; the daemon
// does no signature checking of its own.
type MarketFullNode interface {
	// registry
	RegisterModule(ctx context.Context, caller, module types.Address) error                             //perm:admin
	IsModuleRegistered(ctx context.Context, module types.Address) (bool, error)                         //perm:read
	SetApprovalForModule(ctx context.Context, user, module types.Address, approved bool) error          //perm:write
	SetBatchApprovalForModules(ctx context.Context, user types.Address, modules []types.Address, approved bool) error //perm:write
	IsModuleApproved(ctx context.Context, user, module types.Address) (bool, error)                     //perm:read

	// protocol settings
	SetFloorPrice(ctx context.Context, caller types.Address, collection types.Collection, currency types.Address, price types.Amount) error //perm:admin
	FloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (types.Amount, error)                              //perm:read
	SetRoyaltyBeneficiary(ctx context.Context, caller, beneficiary types.Address, collection types.Collection, tokenID types.TokenID, bps uint16) error //perm:admin
	SetProtocolFee(ctx context.Context, caller, module, recipient types.Address, bps uint16) error                                          //perm:admin
	ProtocolFee(ctx context.Context, module types.Address) (*types.FeeParams, error)                                                        //perm:read

	// asks, single-owner
	CreateAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID, price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) //perm:write
	FillAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, currency types.Address, price types.Amount, finder types.Address) error                              //perm:write
	CancelAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error                                                                                            //perm:write
	AskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Ask, error)                                                                                                    //perm:read

	// asks, multi-quantity
	CreateMultiAsk(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID, quantity uint64, price types.Amount, currency, fundsRecipient types.Address, findersFeeBps uint16) (uint64, error) //perm:write
	FillMultiAsk(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, askIndex uint64, currency types.Address, price types.Amount, finder types.Address) error                              //perm:write
	CancelMultiAsk(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, askIndex uint64) error                                                                                             //perm:write
	MultiAskForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, askIndex uint64) (*types.Ask, error)                                                                                                     //perm:read
	MultiAsksForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Ask, error)                                                                                                                   //perm:read
	MultiAsksForSeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Ask, error)                                                                                          //perm:read

	// offers
	CreateOffer(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, currency types.Address, amount types.Amount, findersFeeBps uint16) (uint64, error) //perm:write
	FillOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, offerIndex uint64, currency types.Address, amount types.Amount, finder types.Address) error //perm:write
	CancelOffer(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, offerIndex uint64) error                                                          //perm:write
	OfferForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, offerIndex uint64) (*types.Offer, error)                                                                //perm:read
	OffersForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Offer, error)                                                                                //perm:read

	// auctions, single-owner
	CreateAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID, duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address, startTime time.Time, currency types.Address) (uint64, error) //perm:write
	CreateBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error  //perm:write
	BuyNowAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, amount types.Amount) error //perm:write
	SettleAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID) error                                         //perm:write
	CancelAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID) error                   //perm:write
	AuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) (*types.Auction, error)                       //perm:read

	// auctions, multi-quantity
	CreateMultiAuction(ctx context.Context, seller types.Address, collection types.Collection, tokenID types.TokenID, quantity uint64, duration time.Duration, reserve, buyNow types.Amount, fundsRecipient types.Address, startTime time.Time, currency types.Address) (uint64, error) //perm:write
	CreateMultiBid(ctx context.Context, bidder types.Address, collection types.Collection, tokenID types.TokenID, index uint64, amount types.Amount) error  //perm:write
	BuyNowMultiAuction(ctx context.Context, buyer types.Address, collection types.Collection, tokenID types.TokenID, index uint64, amount types.Amount) error //perm:write
	SettleMultiAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) error                                         //perm:write
	CancelMultiAuction(ctx context.Context, caller types.Address, collection types.Collection, tokenID types.TokenID, index uint64) error                   //perm:write
	MultiAuctionForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error)                       //perm:read
	MultiAuctionsForNFT(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Auction, error)                                  //perm:read
	MultiAuctionsForSeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error)         //perm:read
}
