package mysql

import (
	"database/sql/driver"
	gbig "math/big"

	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/types"
)

// DBAmount stores an exact integer amount as a decimal varchar column.
type DBAmount struct {
	Amt types.Amount
}

func NewDBAmount(a types.Amount) DBAmount {
	return DBAmount{Amt: types.SafeAmount(a)}
}

func (a DBAmount) Amount() types.Amount {
	return types.SafeAmount(a.Amt)
}

func (a DBAmount) Value() (driver.Value, error) {
	return types.SafeAmount(a.Amt).String(), nil
}

func (a *DBAmount) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return xerrors.Errorf("amount value should be a string: %v", value)
	}
	inner, ok := new(gbig.Int).SetString(raw, 10)
	if !ok {
		return xerrors.Errorf("parse amount %q", raw)
	}
	a.Amt = big.NewFromGo(inner)
	return nil
}

// TimeStampOrm lets gorm maintain unix-second bookkeeping columns on every
// table.
type TimeStampOrm struct {
	CreatedAt uint64 `gorm:"column:created_at;type:bigint unsigned;autoCreateTime"`
	UpdatedAt uint64 `gorm:"column:updated_at;type:bigint unsigned;autoUpdateTime"`
}

func dbCollection(class int, addr string) types.Collection {
	return types.NewCollection(types.AssetClass(class), types.Address(addr))
}
