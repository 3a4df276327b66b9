package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const offerTableName = "offers"

type mysqlOffer struct {
	ID              uint64   `gorm:"primary_key"`
	CollectionClass int      `gorm:"column:collection_class;type:int;uniqueIndex:uniq_offers"`
	CollectionAddr  string   `gorm:"column:collection_addr;type:varchar(256);uniqueIndex:uniq_offers"`
	TokenID         uint64   `gorm:"column:token_id;type:bigint unsigned;uniqueIndex:uniq_offers"`
	OfferIndex      uint64   `gorm:"column:offer_index;type:bigint unsigned;uniqueIndex:uniq_offers"`
	Buyer           string   `gorm:"column:buyer;type:varchar(256);index"`
	Currency        string   `gorm:"column:currency;type:varchar(256)"`
	Amount          DBAmount `gorm:"column:amount;type:varchar(256)"`
	FindersFeeBps   uint16   `gorm:"column:finders_fee_bps;type:smallint unsigned"`
	Escrowed        bool     `gorm:"column:escrowed"`
	Active          bool     `gorm:"column:active"`
	TimeStampOrm
}

func (o *mysqlOffer) TableName() string {
	return offerTableName
}

func fromOffer(src *types.Offer) *mysqlOffer {
	return &mysqlOffer{
		CollectionClass: int(src.Collection.Class),
		CollectionAddr:  src.Collection.Addr.String(),
		TokenID:         uint64(src.TokenID),
		OfferIndex:      src.Index,
		Buyer:           src.Buyer.String(),
		Currency:        src.Currency.String(),
		Amount:          NewDBAmount(src.Amount),
		FindersFeeBps:   src.FindersFeeBps,
		Escrowed:        src.Escrowed,
		Active:          src.Active,
	}
}

func toOffer(src *mysqlOffer) (*types.Offer, error) {
	return &types.Offer{
		Collection: dbCollection(src.CollectionClass, src.CollectionAddr),
		TokenID:    types.TokenID(src.TokenID),
		Index:      src.OfferIndex,
		Buyer:      types.Address(src.Buyer),
		Currency:   types.Address(src.Currency),
		Amount:        src.Amount.Amount(),
		FindersFeeBps: src.FindersFeeBps,
		Escrowed:      src.Escrowed,
		Active:        src.Active,
	}, nil
}

type offerRepo struct {
	*gorm.DB
}

var _ repo.OfferRepo = (*offerRepo)(nil)

func NewOfferRepo(db *gorm.DB) repo.OfferRepo {
	return &offerRepo{db}
}

func (r *offerRepo) SaveOffer(ctx context.Context, offer *types.Offer) error {
	dbOffer := fromOffer(offer)
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"},
			{Name: "token_id"}, {Name: "offer_index"},
		},
		UpdateAll: true,
	}).Save(dbOffer).Error
}

func (r *offerRepo) GetOffer(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Offer, error) {
	var res mysqlOffer
	err := r.WithContext(ctx).Take(&res,
		"collection_class = ? and collection_addr = ? and token_id = ? and offer_index = ?",
		int(collection.Class), collection.Addr.String(), uint64(tokenID), index).Error
	if err != nil {
		return nil, err
	}
	return toOffer(&res)
}

func (r *offerRepo) ListOffers(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Offer, error) {
	var dbOffers []*mysqlOffer
	err := r.WithContext(ctx).Table(offerTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID)).
		Order("offer_index asc").Find(&dbOffers).Error
	if err != nil {
		return nil, err
	}
	offers := make([]*types.Offer, 0, len(dbOffers))
	for _, dbOffer := range dbOffers {
		offer, err := toOffer(dbOffer)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
