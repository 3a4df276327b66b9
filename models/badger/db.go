package badger

import (
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"

	"github.com/modular-market/market/models/repo"
)

const (
	asks        = "/asks"
	offers      = "/offers"
	auctions    = "/auctions"
	royalties   = "/royalties"
	floorPrices = "/floor-prices"
	fees        = "/fees"
	approvals   = "/approvals"
	modules     = "/modules"
)

type (
	MarketDS     datastore.Batching
	AskDS        datastore.Batching
	OfferDS      datastore.Batching
	AuctionDS    datastore.Batching
	RoyaltyDS    datastore.Batching
	FloorPriceDS datastore.Batching
	FeeDS        datastore.Batching
	ApprovalDS   datastore.Batching
	ModuleDS     datastore.Batching
)

func NewAskDS(ds MarketDS) AskDS {
	return namespace.Wrap(ds, datastore.NewKey(asks))
}

func NewOfferDS(ds MarketDS) OfferDS {
	return namespace.Wrap(ds, datastore.NewKey(offers))
}

func NewAuctionDS(ds MarketDS) AuctionDS {
	return namespace.Wrap(ds, datastore.NewKey(auctions))
}

func NewRoyaltyDS(ds MarketDS) RoyaltyDS {
	return namespace.Wrap(ds, datastore.NewKey(royalties))
}

func NewFloorPriceDS(ds MarketDS) FloorPriceDS {
	return namespace.Wrap(ds, datastore.NewKey(floorPrices))
}

func NewFeeDS(ds MarketDS) FeeDS {
	return namespace.Wrap(ds, datastore.NewKey(fees))
}

func NewApprovalDS(ds MarketDS) ApprovalDS {
	return namespace.Wrap(ds, datastore.NewKey(approvals))
}

func NewModuleDS(ds MarketDS) ModuleDS {
	return namespace.Wrap(ds, datastore.NewKey(modules))
}

type BadgerDSParams struct {
	AskDS        AskDS
	OfferDS      OfferDS
	AuctionDS    AuctionDS
	RoyaltyDS    RoyaltyDS
	FloorPriceDS FloorPriceDS
	FeeDS        FeeDS
	ApprovalDS   ApprovalDS
	ModuleDS     ModuleDS
}

func NewBadgerDSParams(ds MarketDS) BadgerDSParams {
	return BadgerDSParams{
		AskDS:        NewAskDS(ds),
		OfferDS:      NewOfferDS(ds),
		AuctionDS:    NewAuctionDS(ds),
		RoyaltyDS:    NewRoyaltyDS(ds),
		FloorPriceDS: NewFloorPriceDS(ds),
		FeeDS:        NewFeeDS(ds),
		ApprovalDS:   NewApprovalDS(ds),
		ModuleDS:     NewModuleDS(ds),
	}
}

type BadgerRepo struct {
	askRepo      repo.AskRepo
	offerRepo    repo.OfferRepo
	auctionRepo  repo.AuctionRepo
	royaltyRepo  repo.RoyaltyRepo
	floorRepo    repo.FloorPriceRepo
	feeRepo      repo.FeeRepo
	approvalRepo repo.ApprovalRepo
}

func NewBadgerRepo(params BadgerDSParams) repo.Repo {
	return &BadgerRepo{
		askRepo:      NewAskRepo(params.AskDS),
		offerRepo:    NewOfferRepo(params.OfferDS),
		auctionRepo:  NewAuctionRepo(params.AuctionDS),
		royaltyRepo:  NewRoyaltyRepo(params.RoyaltyDS),
		floorRepo:    NewFloorPriceRepo(params.FloorPriceDS),
		feeRepo:      NewFeeRepo(params.FeeDS),
		approvalRepo: NewApprovalRepo(params.ApprovalDS, params.ModuleDS),
	}
}

func (r *BadgerRepo) AskRepo() repo.AskRepo               { return r.askRepo }
func (r *BadgerRepo) OfferRepo() repo.OfferRepo           { return r.offerRepo }
func (r *BadgerRepo) AuctionRepo() repo.AuctionRepo       { return r.auctionRepo }
func (r *BadgerRepo) RoyaltyRepo() repo.RoyaltyRepo       { return r.royaltyRepo }
func (r *BadgerRepo) FloorPriceRepo() repo.FloorPriceRepo { return r.floorRepo }
func (r *BadgerRepo) FeeRepo() repo.FeeRepo               { return r.feeRepo }
func (r *BadgerRepo) ApprovalRepo() repo.ApprovalRepo     { return r.approvalRepo }

func (r *BadgerRepo) Migrate() error {
	return nil
}

// Close is a no-op: the root datastore's lifecycle belongs to whoever
// opened it (see models.NewMarketDS).
func (r *BadgerRepo) Close() error {
	return nil
}
