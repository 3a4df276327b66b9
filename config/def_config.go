package config

import (
	"time"

	"github.com/ipfs-force-community/metrics"
)

var DefaultMarketConfig = &MarketConfig{
	Home: Home{"~/.modularmarket"},
	API: APIConfig{
		ListenAddress: "/ip4/127.0.0.1/tcp/41235",
	},
	DB: DbConfig{
		Type:   "badger",
		Badger: BadgerConfig{Path: "metadata"},
		Mysql: MysqlConfig{
			MaxOpenConn:     100,
			MaxIdleConn:     100,
			ConnMaxLifeTime: 60,
		},
	},
	Modules: ModulesConfig{
		Asks:          "market/asks/v1",
		MultiAsks:     "market/asks-multi/v1",
		Offers:        "market/offers/v1",
		Auctions:      "market/auctions/v1",
		MultiAuctions: "market/auctions-multi/v1",
		FundsGateway:  "market/gateway/funds",
		TokenGateway:  "market/gateway/tokens",
	},
	Auction: AuctionConfig{
		MinBidIncrementBps: 1000,
		TimeBuffer:         Duration(15 * time.Minute),
	},
	Metrics: *metrics.DefaultMetricsConfig(),
}
