package main

import (
	"context"

	metricsi "github.com/ipfs/go-metrics-interface"
	"github.com/raulk/clock"

	"github.com/modular-market/market/asks"
	"github.com/modular-market/market/auctions"
	"github.com/modular-market/market/builder"
	"github.com/modular-market/market/config"
	"github.com/modular-market/market/events"
	"github.com/modular-market/market/fees"
	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/ledger"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/models"
	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/offers"
	"github.com/modular-market/market/pricefloor"
	"github.com/modular-market/market/proceeds"
	"github.com/modular-market/market/registry"
	"github.com/modular-market/market/royalty"
	"github.com/modular-market/market/types"
)

// Invokes run in the order they are declared.
var (
	InvokeSetupMetrics    = builder.NextInvoke()
	InvokeMigrate         = builder.NextInvoke()
	InvokeRegisterModules = builder.NextInvoke()
)

// MarketOpts assembles the whole daemon: persistence, ledgers, gateways,
// protocol settings and the five trading modules.
func MarketOpts(cfg *config.MarketConfig) builder.Option {
	return builder.Options(
		builder.Override(new(*config.MarketConfig), cfg),
		builder.Override(new(*config.HomeDir), func() (*config.HomeDir, error) {
			home, err := cfg.HomePath()
			if err != nil {
				return nil, err
			}
			return &home, nil
		}),
		builder.Override(new(*config.DbConfig), &cfg.DB),
		builder.Override(new(*config.BadgerConfig), &cfg.DB.Badger),
		builder.Override(new(*config.AuctionConfig), &cfg.Auction),

		builder.Override(new(metrics.MetricsCtx), func() metrics.MetricsCtx {
			return metricsi.CtxScope(context.Background(), "market")
		}),
		builder.Override(InvokeSetupMetrics, func(mctx metrics.MetricsCtx) error {
			return metrics.SetupMetrics(mctx, &cfg.Metrics)
		}),

		builder.Override(new(badger.MarketDS), models.NewMarketDS),
		builder.Override(new(repo.Repo), models.SetDataBase),
		builder.Override(InvokeMigrate, models.AutoMigrate),

		// the daemon hosts its own asset books
		builder.Override(new(ledger.FungibleLedger), ledger.NewMemFungibleLedger),
		builder.Override(new(ledger.UniqueLedger), ledger.NewMemUniqueLedger),
		builder.Override(new(ledger.MultiLedger), ledger.NewMemMultiLedger),

		builder.Override(new(*registry.Manager), func(r repo.Repo) *registry.Manager {
			return registry.NewManager(r, types.Address(cfg.Registrar))
		}),
		builder.Override(new(*gateway.FungibleGateway), func(reg *registry.Manager, l ledger.FungibleLedger) *gateway.FungibleGateway {
			return gateway.NewFungibleGateway(reg, l, types.Address(cfg.Modules.FundsGateway))
		}),
		builder.Override(new(*gateway.UniqueGateway), func(reg *registry.Manager, l ledger.UniqueLedger) *gateway.UniqueGateway {
			return gateway.NewUniqueGateway(reg, l, types.Address(cfg.Modules.TokenGateway))
		}),
		builder.Override(new(*gateway.MultiGateway), func(reg *registry.Manager, l ledger.MultiLedger) *gateway.MultiGateway {
			return gateway.NewMultiGateway(reg, l, types.Address(cfg.Modules.TokenGateway))
		}),

		builder.Override(new(*pricefloor.Oracle), func(r repo.Repo) *pricefloor.Oracle {
			return pricefloor.NewOracle(r, types.Address(cfg.Admin))
		}),
		builder.Override(new(*royalty.Table), func(r repo.Repo) *royalty.Table {
			return royalty.NewTable(r, types.Address(cfg.Admin))
		}),
		builder.Override(new(*fees.Settings), func(r repo.Repo) *fees.Settings {
			return fees.NewSettings(r, types.Address(cfg.Admin))
		}),
		builder.Override(new(*proceeds.Distributor), proceeds.NewDistributor),

		builder.Override(new(clock.Clock), clock.New),
		builder.Override(new(*events.Bus), events.NewBus),

		builder.Override(new(*asks.Engine), func(r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
			floors *pricefloor.Oracle, dist *proceeds.Distributor) *asks.Engine {
			return asks.NewEngine(types.Address(cfg.Modules.Asks), r, tokens, funds, floors, dist)
		}),
		builder.Override(new(*asks.MultiEngine), func(r repo.Repo, tokens *gateway.MultiGateway, funds *gateway.FungibleGateway,
			floors *pricefloor.Oracle, dist *proceeds.Distributor) *asks.MultiEngine {
			return asks.NewMultiEngine(types.Address(cfg.Modules.MultiAsks), r, tokens, funds, floors, dist)
		}),
		builder.Override(new(*offers.Engine), func(r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
			dist *proceeds.Distributor) *offers.Engine {
			return offers.NewEngine(types.Address(cfg.Modules.Offers), r, tokens, funds, dist)
		}),
		builder.Override(new(*auctions.Engine), func(r repo.Repo, tokens *gateway.UniqueGateway, funds *gateway.FungibleGateway,
			floors *pricefloor.Oracle, dist *proceeds.Distributor, auctionCfg *config.AuctionConfig, clk clock.Clock) *auctions.Engine {
			return auctions.NewEngine(types.Address(cfg.Modules.Auctions), r, tokens, funds, floors, dist, auctionCfg, clk)
		}),
		builder.Override(new(*auctions.MultiEngine), func(r repo.Repo, tokens *gateway.MultiGateway, funds *gateway.FungibleGateway,
			floors *pricefloor.Oracle, dist *proceeds.Distributor, auctionCfg *config.AuctionConfig, clk clock.Clock) *auctions.MultiEngine {
			return auctions.NewMultiEngine(types.Address(cfg.Modules.MultiAuctions), r, tokens, funds, floors, dist, auctionCfg, clk)
		}),

		builder.Override(InvokeRegisterModules, func(reg *registry.Manager) error {
			return registerBuiltinModules(context.Background(), reg, cfg)
		}),
	)
}

// registerBuiltinModules admits the daemon's own trading modules to the
// registry so users can approve them.
func registerBuiltinModules(ctx context.Context, reg *registry.Manager, cfg *config.MarketConfig) error {
	registrar := types.Address(cfg.Registrar)
	for _, module := range []string{
		cfg.Modules.Asks,
		cfg.Modules.MultiAsks,
		cfg.Modules.Offers,
		cfg.Modules.Auctions,
		cfg.Modules.MultiAuctions,
	} {
		if err := reg.RegisterModule(ctx, registrar, types.Address(module)); err != nil {
			return err
		}
	}
	return nil
}
