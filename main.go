package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/api"
	"github.com/modular-market/market/api/impl"
	"github.com/modular-market/market/builder"
	"github.com/modular-market/market/config"
	"github.com/modular-market/market/types"
	"github.com/modular-market/market/utils"
)

var log = logging.Logger("main")

func main() {
	app := &cli.App{
		Name:                 "modular-market",
		Usage:                "modular nft market daemon",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "repo",
				Value: "~/.modularmarket",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the market daemon",
				Action: run,
			},
		},
	}

	app.Setup()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func prepare(cctx *cli.Context) (*config.MarketConfig, error) {
	cfg := config.DefaultMarketConfig
	cfg.HomeDir = cctx.String("repo")

	cfgPath, err := cfg.ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		err = config.SaveConfig(cfg)
		if err != nil {
			return nil, err
		}
	} else if err == nil {
		err = config.LoadConfig(cfgPath, cfg)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}
	return cfg, nil
}

func run(cctx *cli.Context) error {
	utils.SetupLogLevels()

	ctx := cctx.Context
	cfg, err := prepare(cctx)
	if err != nil {
		return xerrors.Errorf("loading config: %w", err)
	}

	var full api.MarketFullNode
	shutdownChan := make(chan struct{})
	stop, err := builder.New(ctx,
		MarketOpts(cfg),
		builder.Override(new(api.MarketFullNode), impl.NewMarketNode),
		builder.Override(new(types.ShutdownChan), types.ShutdownChan(shutdownChan)),
		builder.Populate(&full),
	)
	if err != nil {
		return xerrors.Errorf("initializing node: %w", err)
	}
	defer stop(ctx) //nolint:errcheck

	finishCh := utils.MonitorShutdown(shutdownChan)
	return serveRPC(ctx, &cfg.API, full, finishCh)
}
