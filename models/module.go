package models

import (
	"context"
	"path"

	badgerds "github.com/ipfs/go-ds-badger2"
	"go.uber.org/fx"

	"github.com/modular-market/market/config"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models/badger"
)

// NewMarketDS opens the badger datastore under the market home. The
// store is closed when the fx app stops.
func NewMarketDS(mctx metrics.MetricsCtx, lc fx.Lifecycle, homeDir *config.HomeDir, cfg *config.BadgerConfig) (badger.MarketDS, error) {
	dsPath := cfg.Path
	if !path.IsAbs(dsPath) {
		dsPath = path.Join(string(*homeDir), dsPath)
	}

	db, err := badgerds.NewDatastore(dsPath, &badgerds.DefaultOptions)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}
