package ledger

import (
	"context"

	"github.com/modular-market/market/types"
)

// FungibleLedger tracks currency balances and spender allowances. The
// native unit is addressed by types.NativeCurrency.
type FungibleLedger interface {
	BalanceOf(ctx context.Context, currency, owner types.Address) (types.Amount, error)
	Allowance(ctx context.Context, currency, owner, spender types.Address) (types.Amount, error)
	Approve(ctx context.Context, currency, owner, spender types.Address, amount types.Amount) error
	// Transfer moves funds on the owner's own authority.
	Transfer(ctx context.Context, currency, from, to types.Address, amount types.Amount) error
	// TransferFrom moves funds on a spender's authority, consuming allowance.
	TransferFrom(ctx context.Context, spender, currency, from, to types.Address, amount types.Amount) error
	Mint(ctx context.Context, currency, to types.Address, amount types.Amount) error
}

// UniqueLedger tracks single-owner tokens with per-token and operator
// approvals.
type UniqueLedger interface {
	OwnerOf(ctx context.Context, collection types.Address, tokenID types.TokenID) (types.Address, error)
	Approve(ctx context.Context, caller, collection types.Address, tokenID types.TokenID, spender types.Address) error
	GetApproved(ctx context.Context, collection types.Address, tokenID types.TokenID) (types.Address, error)
	SetOperator(ctx context.Context, owner, collection, operator types.Address, approved bool) error
	IsOperator(ctx context.Context, owner, collection, operator types.Address) (bool, error)
	// TransferFrom moves the token when caller is the owner, the approved
	// spender for the token, or an approved operator. The per-token
	// approval is cleared on transfer.
	TransferFrom(ctx context.Context, caller, collection, from, to types.Address, tokenID types.TokenID) error
	Mint(ctx context.Context, collection, to types.Address, tokenID types.TokenID) error
}

// MultiLedger tracks multi-quantity tokens with per-id balances and
// operator approvals.
type MultiLedger interface {
	BalanceOf(ctx context.Context, collection, owner types.Address, tokenID types.TokenID) (uint64, error)
	SetOperator(ctx context.Context, owner, collection, operator types.Address, approved bool) error
	IsOperator(ctx context.Context, owner, collection, operator types.Address) (bool, error)
	TransferFrom(ctx context.Context, caller, collection, from, to types.Address, tokenID types.TokenID, quantity uint64) error
	Mint(ctx context.Context, collection, to types.Address, tokenID types.TokenID, quantity uint64) error
}
