package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const floorPriceTableName = "floor_prices"

type mysqlFloorPrice struct {
	ID              uint64   `gorm:"primary_key"`
	CollectionClass int      `gorm:"column:collection_class;type:int;uniqueIndex:uniq_floor_prices"`
	CollectionAddr  string   `gorm:"column:collection_addr;type:varchar(256);uniqueIndex:uniq_floor_prices"`
	Currency        string   `gorm:"column:currency;type:varchar(256);uniqueIndex:uniq_floor_prices"`
	Price           DBAmount `gorm:"column:price;type:varchar(256)"`
	TimeStampOrm
}

func (p *mysqlFloorPrice) TableName() string {
	return floorPriceTableName
}

func fromFloorPrice(src *types.FloorPrice) *mysqlFloorPrice {
	return &mysqlFloorPrice{
		CollectionClass: int(src.Collection.Class),
		CollectionAddr:  src.Collection.Addr.String(),
		Currency:        src.Currency.String(),
		Price:           NewDBAmount(src.Price),
	}
}

func toFloorPrice(src *mysqlFloorPrice) (*types.FloorPrice, error) {
	return &types.FloorPrice{
		Collection: dbCollection(src.CollectionClass, src.CollectionAddr),
		Currency:   types.Address(src.Currency),
		Price:      src.Price.Amount(),
	}, nil
}

type floorPriceRepo struct {
	*gorm.DB
}

var _ repo.FloorPriceRepo = (*floorPriceRepo)(nil)

func NewFloorPriceRepo(db *gorm.DB) repo.FloorPriceRepo {
	return &floorPriceRepo{db}
}

func (r *floorPriceRepo) SetFloorPrice(ctx context.Context, fp *types.FloorPrice) error {
	dbFp := fromFloorPrice(fp)
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"}, {Name: "currency"},
		},
		UpdateAll: true,
	}).Save(dbFp).Error
}

func (r *floorPriceRepo) GetFloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (*types.FloorPrice, error) {
	var res mysqlFloorPrice
	err := r.WithContext(ctx).Take(&res,
		"collection_class = ? and collection_addr = ? and currency = ?",
		int(collection.Class), collection.Addr.String(), currency.String()).Error
	if err != nil {
		return nil, err
	}
	return toFloorPrice(&res)
}
