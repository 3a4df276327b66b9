package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const auctionTableName = "auctions"

type mysqlAuction struct {
	ID              uint64   `gorm:"primary_key"`
	CollectionClass int      `gorm:"column:collection_class;type:int;uniqueIndex:uniq_auctions"`
	CollectionAddr  string   `gorm:"column:collection_addr;type:varchar(256);uniqueIndex:uniq_auctions"`
	TokenID         uint64   `gorm:"column:token_id;type:bigint unsigned;uniqueIndex:uniq_auctions"`
	AuctionIndex    uint64   `gorm:"column:auction_index;type:bigint unsigned;uniqueIndex:uniq_auctions"`
	Seller          string   `gorm:"column:seller;type:varchar(256);index"`
	Quantity        uint64   `gorm:"column:quantity;type:bigint unsigned"`
	Duration        int64    `gorm:"column:duration;type:bigint"`
	ReservePrice    DBAmount `gorm:"column:reserve_price;type:varchar(256)"`
	BuyNowPrice     DBAmount `gorm:"column:buy_now_price;type:varchar(256)"`
	FundsRecipient  string   `gorm:"column:funds_recipient;type:varchar(256)"`
	StartTime       int64    `gorm:"column:start_time;type:bigint"`
	EndTime         int64    `gorm:"column:end_time;type:bigint"`
	Currency        string   `gorm:"column:currency;type:varchar(256)"`
	HighestBidder   string   `gorm:"column:highest_bidder;type:varchar(256)"`
	HighestBid      DBAmount `gorm:"column:highest_bid;type:varchar(256)"`
	Status          uint64   `gorm:"column:status;type:bigint unsigned;index"`
	Escrowed        bool     `gorm:"column:escrowed"`
	TimeStampOrm
}

func (a *mysqlAuction) TableName() string {
	return auctionTableName
}

func fromAuction(src *types.Auction) *mysqlAuction {
	return &mysqlAuction{
		CollectionClass: int(src.Collection.Class),
		CollectionAddr:  src.Collection.Addr.String(),
		TokenID:         uint64(src.TokenID),
		AuctionIndex:    src.Index,
		Seller:          src.Seller.String(),
		Quantity:        src.Quantity,
		Duration:        int64(src.Duration / time.Second),
		ReservePrice:    NewDBAmount(src.ReservePrice),
		BuyNowPrice:     NewDBAmount(src.BuyNowPrice),
		FundsRecipient:  src.FundsRecipient.String(),
		StartTime:       src.StartTime.Unix(),
		EndTime:         src.EndTime.Unix(),
		Currency:        src.Currency.String(),
		HighestBidder:   src.HighestBidder.String(),
		HighestBid:      NewDBAmount(src.HighestBid),
		Status:          uint64(src.Status),
		Escrowed:        src.Escrowed,
	}
}

func toAuction(src *mysqlAuction) (*types.Auction, error) {
	return &types.Auction{
		Collection:     dbCollection(src.CollectionClass, src.CollectionAddr),
		TokenID:        types.TokenID(src.TokenID),
		Index:          src.AuctionIndex,
		Seller:         types.Address(src.Seller),
		Quantity:       src.Quantity,
		Duration:       time.Duration(src.Duration) * time.Second,
		ReservePrice:   src.ReservePrice.Amount(),
		BuyNowPrice:    src.BuyNowPrice.Amount(),
		FundsRecipient: types.Address(src.FundsRecipient),
		StartTime:      time.Unix(src.StartTime, 0).UTC(),
		EndTime:        time.Unix(src.EndTime, 0).UTC(),
		Currency:       types.Address(src.Currency),
		HighestBidder:  types.Address(src.HighestBidder),
		HighestBid:     src.HighestBid.Amount(),
		Status:         types.AuctionStatus(src.Status),
		Escrowed:       src.Escrowed,
	}, nil
}

type auctionRepo struct {
	*gorm.DB
}

var _ repo.AuctionRepo = (*auctionRepo)(nil)

func NewAuctionRepo(db *gorm.DB) repo.AuctionRepo {
	return &auctionRepo{db}
}

func (r *auctionRepo) SaveAuction(ctx context.Context, auction *types.Auction) error {
	dbAuction := fromAuction(auction)
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"},
			{Name: "token_id"}, {Name: "auction_index"},
		},
		UpdateAll: true,
	}).Save(dbAuction).Error
}

func (r *auctionRepo) GetAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	var res mysqlAuction
	err := r.WithContext(ctx).Take(&res,
		"collection_class = ? and collection_addr = ? and token_id = ? and auction_index = ?",
		int(collection.Class), collection.Addr.String(), uint64(tokenID), index).Error
	if err != nil {
		return nil, err
	}
	return toAuction(&res)
}

func (r *auctionRepo) ListAuctions(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Auction, error) {
	var dbAuctions []*mysqlAuction
	err := r.WithContext(ctx).Table(auctionTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID)).
		Order("auction_index asc").Find(&dbAuctions).Error
	if err != nil {
		return nil, err
	}
	return toAuctions(dbAuctions)
}

func (r *auctionRepo) ListAuctionsBySeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error) {
	var dbAuctions []*mysqlAuction
	err := r.WithContext(ctx).Table(auctionTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ? and seller = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID), seller.String()).
		Order("auction_index asc").Find(&dbAuctions).Error
	if err != nil {
		return nil, err
	}
	return toAuctions(dbAuctions)
}

func toAuctions(dbAuctions []*mysqlAuction) ([]*types.Auction, error) {
	auctions := make([]*types.Auction, 0, len(dbAuctions))
	for _, dbAuction := range dbAuctions {
		auction, err := toAuction(dbAuction)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}
	return auctions, nil
}
