package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

const (
	approvalTableName = "module_approvals"
	moduleTableName   = "registered_modules"
)

type mysqlModuleApproval struct {
	ID       uint64 `gorm:"primary_key"`
	User     string `gorm:"column:user;type:varchar(256);uniqueIndex:uniq_approvals"`
	Module   string `gorm:"column:module;type:varchar(256);uniqueIndex:uniq_approvals"`
	Approved bool   `gorm:"column:approved"`
	TimeStampOrm
}

func (a *mysqlModuleApproval) TableName() string {
	return approvalTableName
}

type mysqlRegisteredModule struct {
	ID     uint64 `gorm:"primary_key"`
	Module string `gorm:"column:module;type:varchar(256);uniqueIndex"`
	TimeStampOrm
}

func (m *mysqlRegisteredModule) TableName() string {
	return moduleTableName
}

type approvalRepo struct {
	*gorm.DB
}

var _ repo.ApprovalRepo = (*approvalRepo)(nil)

func NewApprovalRepo(db *gorm.DB) repo.ApprovalRepo {
	return &approvalRepo{db}
}

func (r *approvalRepo) RegisterModule(ctx context.Context, module types.Address) error {
	return r.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "module"}},
		DoNothing: true,
	}).Create(&mysqlRegisteredModule{Module: module.String()}).Error
}

func (r *approvalRepo) IsModuleRegistered(ctx context.Context, module types.Address) (bool, error) {
	var res mysqlRegisteredModule
	err := r.WithContext(ctx).Take(&res, "module = ?", module.String()).Error
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetApprovals runs the whole batch in one transaction: all listed bits
// update or none do.
func (r *approvalRepo) SetApprovals(ctx context.Context, user types.Address, modules []types.Address, approved bool) error {
	return r.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, module := range modules {
			row := &mysqlModuleApproval{
				User:     user.String(),
				Module:   module.String(),
				Approved: approved,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user"}, {Name: "module"}},
				UpdateAll: true,
			}).Create(row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *approvalRepo) IsApproved(ctx context.Context, user types.Address, module types.Address) (bool, error) {
	var res mysqlModuleApproval
	err := r.WithContext(ctx).Take(&res, "user = ? and module = ?", user.String(), module.String()).Error
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return res.Approved, nil
}
