package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const feeParamsTableName = "fee_params"

type mysqlFeeParams struct {
	ID        uint64 `gorm:"primary_key"`
	Module    string `gorm:"column:module;type:varchar(256);uniqueIndex"`
	Recipient string `gorm:"column:recipient;type:varchar(256)"`
	Bps       uint16 `gorm:"column:bps;type:smallint unsigned"`
	TimeStampOrm
}

func (p *mysqlFeeParams) TableName() string {
	return feeParamsTableName
}

type feeRepo struct {
	*gorm.DB
}

var _ repo.FeeRepo = (*feeRepo)(nil)

func NewFeeRepo(db *gorm.DB) repo.FeeRepo {
	return &feeRepo{db}
}

func (r *feeRepo) SetFeeParams(ctx context.Context, params *types.FeeParams) error {
	row := &mysqlFeeParams{
		Module:    params.Module.String(),
		Recipient: params.Recipient.String(),
		Bps:       params.Bps,
	}
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "module"}},
		UpdateAll: true,
	}).Save(row).Error
}

func (r *feeRepo) GetFeeParams(ctx context.Context, module types.Address) (*types.FeeParams, error) {
	var res mysqlFeeParams
	err := r.WithContext(ctx).Take(&res, "module = ?", module.String()).Error
	if err != nil {
		return nil, err
	}
	return &types.FeeParams{
		Module:    types.Address(res.Module),
		Recipient: types.Address(res.Recipient),
		Bps:       res.Bps,
	}, nil
}
