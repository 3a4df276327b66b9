package repo

import (
	"context"
	"errors"

	"github.com/ipfs/go-datastore"
	"gorm.io/gorm"

	"github.com/modular-market/market/types"
)

// AskRepo stores fixed-price listings. Indexes are 1-based per
// (collection, token); cancelled asks keep their record so indexes are
// never reused.
type AskRepo interface {
	SaveAsk(ctx context.Context, ask *types.Ask) error
	GetAsk(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Ask, error)
	// ListAsks returns every ask for the token, active or not, ordered by
	// index.
	ListAsks(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Ask, error)
}

type OfferRepo interface {
	SaveOffer(ctx context.Context, offer *types.Offer) error
	GetOffer(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Offer, error)
	ListOffers(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Offer, error)
}

type AuctionRepo interface {
	SaveAuction(ctx context.Context, auction *types.Auction) error
	GetAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error)
	ListAuctions(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Auction, error)
	// ListAuctionsBySeller filters ListAuctions down to one seller's
	// auctions, ordered by index.
	ListAuctionsBySeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error)
}

// RoyaltyRepo stores the beneficiary list per exact item or per collection
// wildcard. SetRoyalties replaces the whole list for the key.
type RoyaltyRepo interface {
	SetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID, pieces []types.RoyaltyPiece) error
	// GetRoyalties returns ErrNotFound when no entry was ever set for the
	// key; an empty list is a valid stored state.
	GetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]types.RoyaltyPiece, error)
}

type FloorPriceRepo interface {
	SetFloorPrice(ctx context.Context, fp *types.FloorPrice) error
	GetFloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (*types.FloorPrice, error)
}

type FeeRepo interface {
	SetFeeParams(ctx context.Context, params *types.FeeParams) error
	GetFeeParams(ctx context.Context, module types.Address) (*types.FeeParams, error)
}

// ApprovalRepo backs the module registry. SetApprovals applies the whole
// batch atomically: either every listed bit updates or none do.
type ApprovalRepo interface {
	RegisterModule(ctx context.Context, module types.Address) error
	IsModuleRegistered(ctx context.Context, module types.Address) (bool, error)
	SetApprovals(ctx context.Context, user types.Address, modules []types.Address, approved bool) error
	IsApproved(ctx context.Context, user types.Address, module types.Address) (bool, error)
}

type Repo interface {
	AskRepo() AskRepo
	OfferRepo() OfferRepo
	AuctionRepo() AuctionRepo
	RoyaltyRepo() RoyaltyRepo
	FloorPriceRepo() FloorPriceRepo
	FeeRepo() FeeRepo
	ApprovalRepo() ApprovalRepo
	Migrate() error
	Close() error
}

var ErrNotFound = errors.New("record not found")

// UniformNotFoundErrors lets callers match repo.ErrNotFound regardless of
// the backend in use.
func UniformNotFoundErrors() {
	datastore.ErrNotFound = ErrNotFound
	gorm.ErrRecordNotFound = ErrNotFound
}

func init() {
	UniformNotFoundErrors()
}
