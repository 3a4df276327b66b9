package models

import (
	"golang.org/x/xerrors"

	"github.com/modular-market/market/config"
	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/models/mysql"
	"github.com/modular-market/market/models/repo"
)

func SetDataBase(marketDS badger.MarketDS, cfg *config.DbConfig) (repo.Repo, error) {
	switch cfg.Type {
	case "badger":
		return badger.NewBadgerRepo(badger.NewBadgerDSParams(marketDS)), nil
	case "mysql":
		return mysql.OpenMysql(&cfg.Mysql)
	default:
		return nil, xerrors.Errorf("unsupport db type,(%s, %s)", "badger", "mysql")
	}
}

func AutoMigrate(repo repo.Repo) error {
	return repo.Migrate()
}
