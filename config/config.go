package config

import (
	"encoding"
	"time"

	"github.com/ipfs-force-community/metrics"
)

// MysqlConfig holds the connection settings for the mysql backed repo.
type MysqlConfig struct {
	ConnectionString string
	MaxOpenConn      int
	MaxIdleConn      int
	// ConnMaxLifeTime is in minutes
	ConnMaxLifeTime int
	Debug           bool
}

// BadgerConfig locates the badger datastore, relative to the market home
// unless an absolute path is given.
type BadgerConfig struct {
	Path string
}

type DbConfig struct {
	// Type selects the persistence backend: "badger" or "mysql"
	Type   string
	Badger BadgerConfig
	Mysql  MysqlConfig
}

// APIConfig is the listen address of the JSON-RPC endpoint.
type APIConfig struct {
	ListenAddress string
}

// ModulesConfig assigns the protocol address each trading module acts
// under. A module address is the escrow account for that module's
// in-flight funds and items, and the identity users approve through the
// registry.
type ModulesConfig struct {
	Asks          string
	MultiAsks     string
	Offers        string
	Auctions      string
	MultiAuctions string

	// FundsGateway and TokenGateway are the spender addresses users grant
	// asset-level allowances to.
	FundsGateway string
	TokenGateway string
}

// AuctionConfig tunes the reserve auction engines.
type AuctionConfig struct {
	// MinBidIncrementBps is the minimum percentage (in basis points) a
	// new bid must exceed the standing bid by.
	MinBidIncrementBps uint16
	// TimeBuffer extends an auction when a bid lands within this window
	// of its end time.
	TimeBuffer Duration
}

// MarketConfig is the root configuration of the market daemon.
type MarketConfig struct {
	Home `toml:"-"`

	// Registrar may register new market modules; Admin controls fee
	// params and floor prices.
	Registrar string
	Admin     string

	API     APIConfig
	DB      DbConfig
	Modules ModulesConfig
	Auction AuctionConfig

	Metrics metrics.MetricsConfig
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
