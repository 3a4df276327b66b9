package mysql

import (
	"time"

	"golang.org/x/xerrors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/modular-market/market/config"
	"github.com/modular-market/market/models/repo"
)

type MysqlRepo struct {
	*gorm.DB
}

var _ repo.Repo = MysqlRepo{}

func (r MysqlRepo) AskRepo() repo.AskRepo {
	return NewAskRepo(r.DB)
}

func (r MysqlRepo) OfferRepo() repo.OfferRepo {
	return NewOfferRepo(r.DB)
}

func (r MysqlRepo) AuctionRepo() repo.AuctionRepo {
	return NewAuctionRepo(r.DB)
}

func (r MysqlRepo) RoyaltyRepo() repo.RoyaltyRepo {
	return NewRoyaltyRepo(r.DB)
}

func (r MysqlRepo) FloorPriceRepo() repo.FloorPriceRepo {
	return NewFloorPriceRepo(r.DB)
}

func (r MysqlRepo) FeeRepo() repo.FeeRepo {
	return NewFeeRepo(r.DB)
}

func (r MysqlRepo) ApprovalRepo() repo.ApprovalRepo {
	return NewApprovalRepo(r.DB)
}

func (r MysqlRepo) Migrate() error {
	return r.DB.AutoMigrate(
		mysqlAsk{},
		mysqlOffer{},
		mysqlAuction{},
		mysqlRoyaltyPiece{},
		mysqlFloorPrice{},
		mysqlFeeParams{},
		mysqlModuleApproval{},
		mysqlRegisteredModule{},
	)
}

func (r MysqlRepo) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func OpenMysql(cfg *config.MysqlConfig) (repo.Repo, error) {
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString), &gorm.Config{})
	if err != nil {
		return nil, xerrors.Errorf("open mysql %s: %w", cfg.ConnectionString, err)
	}

	db.Set("gorm:table_options", "CHARSET=utf8mb4")
	if cfg.Debug {
		db = db.Debug()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetConnMaxLifetime(time.Minute * time.Duration(cfg.ConnMaxLifeTime))

	return MysqlRepo{db}, nil
}
