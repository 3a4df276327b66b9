package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const royaltyTableName = "royalty_pieces"

type mysqlRoyaltyPiece struct {
	ID              uint64 `gorm:"primary_key"`
	CollectionClass int    `gorm:"column:collection_class;type:int;uniqueIndex:uniq_royalties"`
	CollectionAddr  string `gorm:"column:collection_addr;type:varchar(256);uniqueIndex:uniq_royalties"`
	TokenID         uint64 `gorm:"column:token_id;type:bigint unsigned;uniqueIndex:uniq_royalties"`
	Beneficiary     string `gorm:"column:beneficiary;type:varchar(256);uniqueIndex:uniq_royalties"`
	Bps             uint16 `gorm:"column:bps;type:smallint unsigned"`
	Position        int    `gorm:"column:position;type:int"`
	TimeStampOrm
}

func (p *mysqlRoyaltyPiece) TableName() string {
	return royaltyTableName
}

type royaltyRepo struct {
	*gorm.DB
}

var _ repo.RoyaltyRepo = (*royaltyRepo)(nil)

func NewRoyaltyRepo(db *gorm.DB) repo.RoyaltyRepo {
	return &royaltyRepo{db}
}

// SetRoyalties replaces the whole beneficiary list for the key in one
// transaction; readers never observe a half-written list.
func (r *royaltyRepo) SetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID, pieces []types.RoyaltyPiece) error {
	return r.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID)).
			Delete(&mysqlRoyaltyPiece{}).Error
		if err != nil {
			return err
		}
		for i, piece := range pieces {
			row := &mysqlRoyaltyPiece{
				CollectionClass: int(collection.Class),
				CollectionAddr:  collection.Addr.String(),
				TokenID:         uint64(tokenID),
				Beneficiary:     piece.Beneficiary.String(),
				Bps:             piece.Bps,
				Position:        i,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRoyalties reports ErrNotFound when the key has no rows; callers treat
// that the same as an empty list.
func (r *royaltyRepo) GetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]types.RoyaltyPiece, error) {
	var rows []*mysqlRoyaltyPiece
	err := r.WithContext(ctx).Table(royaltyTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(tokenID)).
		Order("position asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repo.ErrNotFound
	}
	pieces := make([]types.RoyaltyPiece, 0, len(rows))
	for _, row := range rows {
		pieces = append(pieces, types.RoyaltyPiece{
			Beneficiary: types.Address(row.Beneficiary),
			Bps:         row.Bps,
		})
	}
	return pieces, nil
}
