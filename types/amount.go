package types

import (
	"github.com/filecoin-project/go-state-types/big"
)

// Amount is an exact integer quantity of a currency's smallest unit.
type Amount = big.Int

func NewAmount(v int64) Amount {
	return big.NewInt(v)
}

func ZeroAmount() Amount {
	return big.Zero()
}

// ShareOf returns amount*bps/10000, rounding down.
func ShareOf(amount Amount, bps uint16) Amount {
	return big.Div(big.Mul(amount, big.NewInt(int64(bps))), big.NewInt(10000))
}

// SafeAmount maps an uninitialized amount to zero so that arithmetic and
// serialization never see a nil inner integer.
func SafeAmount(a Amount) Amount {
	if a.Nil() {
		return big.Zero()
	}
	return a
}

// IsZeroAmount reports whether a is zero; an uninitialized amount counts
// as zero. big.Int's own IsZero takes a pointer receiver, so it cannot
// be called on expression results.
func IsZeroAmount(a Amount) bool {
	v := SafeAmount(a)
	return v.IsZero()
}
