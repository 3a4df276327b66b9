package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const askTableName = "asks"

type mysqlAsk struct {
	ID              uint64   `gorm:"primary_key"`
	CollectionClass int      `gorm:"column:collection_class;type:int;uniqueIndex:uniq_asks"`
	CollectionAddr  string   `gorm:"column:collection_addr;type:varchar(256);uniqueIndex:uniq_asks"`
	TokenID         uint64   `gorm:"column:token_id;type:bigint unsigned;uniqueIndex:uniq_asks"`
	AskIndex        uint64   `gorm:"column:ask_index;type:bigint unsigned;uniqueIndex:uniq_asks"`
	Seller          string   `gorm:"column:seller;type:varchar(256);index"`
	Quantity        uint64   `gorm:"column:quantity;type:bigint unsigned"`
	Price           DBAmount `gorm:"column:price;type:varchar(256)"`
	Currency        string   `gorm:"column:currency;type:varchar(256)"`
	FundsRecipient  string   `gorm:"column:funds_recipient;type:varchar(256)"`
	FindersFeeBps   uint16   `gorm:"column:finders_fee_bps;type:smallint unsigned"`
	Active          bool     `gorm:"column:active"`
	TimeStampOrm
}

func (a *mysqlAsk) TableName() string {
	return askTableName
}

func fromAsk(src *types.Ask) *mysqlAsk {
	return &mysqlAsk{
		CollectionClass: int(src.Collection.Class),
		CollectionAddr:  src.Collection.Addr.String(),
		TokenID:         uint64(src.TokenID),
		AskIndex:        src.Index,
		Seller:          src.Seller.String(),
		Quantity:        src.Quantity,
		Price:           NewDBAmount(src.Price),
		Currency:        src.Currency.String(),
		FundsRecipient:  src.FundsRecipient.String(),
		FindersFeeBps:   src.FindersFeeBps,
		Active:          src.Active,
	}
}

func toAsk(src *mysqlAsk) (*types.Ask, error) {
	return &types.Ask{
		Collection:     dbCollection(src.CollectionClass, src.CollectionAddr),
		TokenID:        types.TokenID(src.TokenID),
		Index:          src.AskIndex,
		Seller:         types.Address(src.Seller),
		Quantity:       src.Quantity,
		Price:          src.Price.Amount(),
		Currency:       types.Address(src.Currency),
		FundsRecipient: types.Address(src.FundsRecipient),
		FindersFeeBps:  src.FindersFeeBps,
		Active:         src.Active,
	}, nil
}

type askRepo struct {
	*gorm.DB
}

var _ repo.AskRepo = (*askRepo)(nil)

func NewAskRepo(db *gorm.DB) repo.AskRepo {
	return &askRepo{db}
}

func (r *askRepo) SaveAsk(ctx context.Context, ask *types.Ask) error {
	dbAsk := fromAsk(ask)
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"},
			{Name: "token_id"}, {Name: "ask_index"},
		},
		UpdateAll: true,
	}).Save(dbAsk).Error
}

func (r *askRepo) GetAsk(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Ask, error) {
	var res mysqlAsk
	err := r.WithContext(ctx).Take(&res,
		"collection_class = ? and collection_addr = ? and token_id = ? and ask_index = ?",
		int(collection.Class), collection.Addr.String(), uint64(tokenID), index).Error
	if err != nil {
		return nil, err
	}
	return toAsk(&res)
}

func (r *askRepo) ListAsks(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]*types.Ask, error) {
	var dbAsks []*mysqlAsk
	err := r.WithContext(ctx).Table(askTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID)).
		Order("ask_index asc").Find(&dbAsks).Error
	if err != nil {
		return nil, err
	}
	asks := make([]*types.Ask, 0, len(dbAsks))
	for _, dbAsk := range dbAsks {
		ask, err := toAsk(dbAsk)
		if err != nil {
			return nil, err
		}
		asks = append(asks, ask)
	}
	return asks, nil
}
