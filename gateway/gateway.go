package gateway

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/modular-market/market/ledger"
	"github.com/modular-market/market/types"
)

// ApprovalChecker answers whether a user has approved a trading module;
// the registry manager implements it.
type ApprovalChecker interface {
	IsApproved(ctx context.Context, user, module types.Address) (bool, error)
}

// FungibleGateway is the single funds-moving authority shared by every
// trading module. A pull on behalf of a module succeeds only when the
// owner has approved that module in the registry and, for non-native
// currencies, granted the gateway an allowance on the ledger. A module
// moving funds out of its own escrow account bypasses both checks.
type FungibleGateway struct {
	registry ApprovalChecker
	ledger   ledger.FungibleLedger
	self     types.Address
}

func NewFungibleGateway(registry ApprovalChecker, l ledger.FungibleLedger, self types.Address) *FungibleGateway {
	return &FungibleGateway{registry: registry, ledger: l, self: self}
}

// Addr is the account users grant ledger allowances to.
func (g *FungibleGateway) Addr() types.Address {
	return g.self
}

func (g *FungibleGateway) BalanceOf(ctx context.Context, currency, owner types.Address) (types.Amount, error) {
	return g.ledger.BalanceOf(ctx, currency, owner)
}

func (g *FungibleGateway) Transfer(ctx context.Context, module, currency, from, to types.Address, amount types.Amount) error {
	if from == module {
		return g.ledger.Transfer(ctx, currency, from, to, amount)
	}

	if err := checkModuleApproval(ctx, g.registry, from, module); err != nil {
		return err
	}
	if currency.Native() {
		// attached payment: no allowance to consume
		return g.ledger.Transfer(ctx, currency, from, to, amount)
	}
	return g.ledger.TransferFrom(ctx, g.self, currency, from, to, amount)
}

// UniqueGateway moves single-owner tokens on behalf of approved modules.
type UniqueGateway struct {
	registry ApprovalChecker
	ledger   ledger.UniqueLedger
	self     types.Address
}

func NewUniqueGateway(registry ApprovalChecker, l ledger.UniqueLedger, self types.Address) *UniqueGateway {
	return &UniqueGateway{registry: registry, ledger: l, self: self}
}

func (g *UniqueGateway) Addr() types.Address {
	return g.self
}

func (g *UniqueGateway) OwnerOf(ctx context.Context, collection types.Address, tokenID types.TokenID) (types.Address, error) {
	return g.ledger.OwnerOf(ctx, collection, tokenID)
}

func (g *UniqueGateway) Transfer(ctx context.Context, module, collection, from, to types.Address, tokenID types.TokenID) error {
	if from == module {
		return g.ledger.TransferFrom(ctx, from, collection, from, to, tokenID)
	}

	if err := checkModuleApproval(ctx, g.registry, from, module); err != nil {
		return err
	}
	return g.ledger.TransferFrom(ctx, g.self, collection, from, to, tokenID)
}

// MultiGateway moves multi-quantity tokens on behalf of approved modules.
type MultiGateway struct {
	registry ApprovalChecker
	ledger   ledger.MultiLedger
	self     types.Address
}

func NewMultiGateway(registry ApprovalChecker, l ledger.MultiLedger, self types.Address) *MultiGateway {
	return &MultiGateway{registry: registry, ledger: l, self: self}
}

func (g *MultiGateway) Addr() types.Address {
	return g.self
}

func (g *MultiGateway) BalanceOf(ctx context.Context, collection, owner types.Address, tokenID types.TokenID) (uint64, error) {
	return g.ledger.BalanceOf(ctx, collection, owner, tokenID)
}

func (g *MultiGateway) Transfer(ctx context.Context, module, collection, from, to types.Address, tokenID types.TokenID, quantity uint64) error {
	if from == module {
		return g.ledger.TransferFrom(ctx, from, collection, from, to, tokenID, quantity)
	}

	if err := checkModuleApproval(ctx, g.registry, from, module); err != nil {
		return err
	}
	return g.ledger.TransferFrom(ctx, g.self, collection, from, to, tokenID, quantity)
}

func checkModuleApproval(ctx context.Context, registry ApprovalChecker, user, module types.Address) error {
	approved, err := registry.IsApproved(ctx, user, module)
	if err != nil {
		return err
	}
	if !approved {
		return xerrors.Errorf("%s has not approved module %s: %w", user, module, types.ErrNotAuthorized)
	}
	return nil
}
