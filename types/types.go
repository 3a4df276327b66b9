package types

import (
	"fmt"
	"math"
)

// Address identifies an account, a deployed asset contract or a trading
// module. Modules are addressable so that they can hold escrowed assets on
// the underlying ledgers like any other account.
type Address string

// UndefAddress is the zero address. Passing it as a finder disables the
// finders fee carve-out.
var UndefAddress = Address("")

// NativeCurrency is the currency address of the ledger's native unit,
// mirroring the zero-address convention of the underlying asset ledgers.
var NativeCurrency = Address("")

func (a Address) Empty() bool {
	return a == UndefAddress
}

// Native reports whether the address denotes the native currency.
func (a Address) Native() bool {
	return a == NativeCurrency
}

func (a Address) String() string {
	return string(a)
}

// ShutdownChan is a channel to which you send a value if you intend to
// shut down the daemon.
type ShutdownChan chan struct{}

// AssetClass selects which transfer gateway can move items of a collection.
type AssetClass int

const (
	ClassFungible AssetClass = iota + 1
	ClassUnique
	ClassMulti
)

func (c AssetClass) String() string {
	switch c {
	case ClassFungible:
		return "fungible"
	case ClassUnique:
		return "unique"
	case ClassMulti:
		return "multi"
	}
	return fmt.Sprintf("AssetClass(%d)", int(c))
}

// Collection references a deployed asset contract.
type Collection struct {
	Class AssetClass `json:"class"`
	Addr  Address    `json:"addr"`
}

func NewCollection(class AssetClass, addr Address) Collection {
	return Collection{Class: class, Addr: addr}
}

func (c Collection) String() string {
	return fmt.Sprintf("%s/%s", c.Class, c.Addr)
}

// Key is stable and filesystem/datastore safe.
func (c Collection) Key() string {
	return fmt.Sprintf("%d-%s", int(c.Class), c.Addr)
}

// TokenID identifies an item within a collection.
type TokenID uint64

// WildcardTokenID keys royalty entries that apply to every item of a
// collection. Exact-item entries take precedence over it.
const WildcardTokenID = TokenID(math.MaxUint64)

func (t TokenID) String() string {
	if t == WildcardTokenID {
		return "*"
	}
	return fmt.Sprintf("%d", uint64(t))
}
