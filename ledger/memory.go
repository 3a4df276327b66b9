package ledger

import (
	"context"
	"sync"

	fbig "github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/types"
)

type fundsKey struct {
	currency types.Address
	owner    types.Address
}

type allowanceKey struct {
	currency types.Address
	owner    types.Address
	spender  types.Address
}

// MemFungibleLedger is an in-process FungibleLedger used by the
// gateways and tests.
type MemFungibleLedger struct {
	lk         sync.Mutex
	balances   map[fundsKey]types.Amount
	allowances map[allowanceKey]types.Amount
}

var _ FungibleLedger = (*MemFungibleLedger)(nil)

func NewMemFungibleLedger() *MemFungibleLedger {
	return &MemFungibleLedger{
		balances:   make(map[fundsKey]types.Amount),
		allowances: make(map[allowanceKey]types.Amount),
	}
}

func (l *MemFungibleLedger) BalanceOf(ctx context.Context, currency, owner types.Address) (types.Amount, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return types.SafeAmount(l.balances[fundsKey{currency, owner}]), nil
}

func (l *MemFungibleLedger) Allowance(ctx context.Context, currency, owner, spender types.Address) (types.Amount, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return types.SafeAmount(l.allowances[allowanceKey{currency, owner, spender}]), nil
}

func (l *MemFungibleLedger) Approve(ctx context.Context, currency, owner, spender types.Address, amount types.Amount) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	l.allowances[allowanceKey{currency, owner, spender}] = types.SafeAmount(amount)
	return nil
}

func (l *MemFungibleLedger) Transfer(ctx context.Context, currency, from, to types.Address, amount types.Amount) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	return l.move(currency, from, to, amount)
}

func (l *MemFungibleLedger) TransferFrom(ctx context.Context, spender, currency, from, to types.Address, amount types.Amount) error {
	l.lk.Lock()
	defer l.lk.Unlock()

	// a shortfall is reported ahead of any allowance problem
	balance := types.SafeAmount(l.balances[fundsKey{currency, from}])
	if balance.LessThan(amount) {
		return xerrors.Errorf("%s holds %s of %s, need %s: %w", from, balance, currencyLabel(currency), amount, types.ErrInsufficientBalance)
	}

	if spender != from {
		allowance := types.SafeAmount(l.allowances[allowanceKey{currency, from, spender}])
		if allowance.LessThan(amount) {
			return xerrors.Errorf("spender %s allowance %s below %s: %w", spender, allowance, amount, types.ErrNotAuthorized)
		}
		l.allowances[allowanceKey{currency, from, spender}] = fbig.Sub(allowance, amount)
	}
	return l.move(currency, from, to, amount)
}

func (l *MemFungibleLedger) Mint(ctx context.Context, currency, to types.Address, amount types.Amount) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	key := fundsKey{currency, to}
	l.balances[key] = fbig.Add(types.SafeAmount(l.balances[key]), amount)
	return nil
}

// move assumes l.lk held.
func (l *MemFungibleLedger) move(currency, from, to types.Address, amount types.Amount) error {
	fromKey := fundsKey{currency, from}
	balance := types.SafeAmount(l.balances[fromKey])
	if balance.LessThan(amount) {
		return xerrors.Errorf("%s holds %s of %s, need %s: %w", from, balance, currencyLabel(currency), amount, types.ErrInsufficientBalance)
	}
	toKey := fundsKey{currency, to}
	l.balances[fromKey] = fbig.Sub(balance, amount)
	l.balances[toKey] = fbig.Add(types.SafeAmount(l.balances[toKey]), amount)
	return nil
}

func currencyLabel(currency types.Address) string {
	if currency.Native() {
		return "native"
	}
	return currency.String()
}

type tokenKey struct {
	collection types.Address
	tokenID    types.TokenID
}

type operatorKey struct {
	collection types.Address
	owner      types.Address
	operator   types.Address
}

// MemUniqueLedger is an in-process UniqueLedger.
type MemUniqueLedger struct {
	lk        sync.Mutex
	owners    map[tokenKey]types.Address
	approved  map[tokenKey]types.Address
	operators map[operatorKey]bool
}

var _ UniqueLedger = (*MemUniqueLedger)(nil)

func NewMemUniqueLedger() *MemUniqueLedger {
	return &MemUniqueLedger{
		owners:    make(map[tokenKey]types.Address),
		approved:  make(map[tokenKey]types.Address),
		operators: make(map[operatorKey]bool),
	}
}

func (l *MemUniqueLedger) OwnerOf(ctx context.Context, collection types.Address, tokenID types.TokenID) (types.Address, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	owner, ok := l.owners[tokenKey{collection, tokenID}]
	if !ok {
		return types.UndefAddress, xerrors.Errorf("token %s/%s does not exist", collection, tokenID)
	}
	return owner, nil
}

func (l *MemUniqueLedger) Approve(ctx context.Context, caller, collection types.Address, tokenID types.TokenID, spender types.Address) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	key := tokenKey{collection, tokenID}
	owner, ok := l.owners[key]
	if !ok {
		return xerrors.Errorf("token %s/%s does not exist", collection, tokenID)
	}
	if caller != owner && !l.operators[operatorKey{collection, owner, caller}] {
		return xerrors.Errorf("%s cannot approve token of %s: %w", caller, owner, types.ErrNotAuthorized)
	}
	l.approved[key] = spender
	return nil
}

func (l *MemUniqueLedger) GetApproved(ctx context.Context, collection types.Address, tokenID types.TokenID) (types.Address, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return l.approved[tokenKey{collection, tokenID}], nil
}

func (l *MemUniqueLedger) SetOperator(ctx context.Context, owner, collection, operator types.Address, approved bool) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	if approved {
		l.operators[operatorKey{collection, owner, operator}] = true
	} else {
		delete(l.operators, operatorKey{collection, owner, operator})
	}
	return nil
}

func (l *MemUniqueLedger) IsOperator(ctx context.Context, owner, collection, operator types.Address) (bool, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return l.operators[operatorKey{collection, owner, operator}], nil
}

func (l *MemUniqueLedger) TransferFrom(ctx context.Context, caller, collection, from, to types.Address, tokenID types.TokenID) error {
	l.lk.Lock()
	defer l.lk.Unlock()

	key := tokenKey{collection, tokenID}
	owner, ok := l.owners[key]
	if !ok {
		return xerrors.Errorf("token %s/%s does not exist", collection, tokenID)
	}
	if owner != from {
		return xerrors.Errorf("%s does not own token %s/%s: %w", from, collection, tokenID, types.ErrNotAuthorized)
	}
	if caller != owner && l.approved[key] != caller && !l.operators[operatorKey{collection, owner, caller}] {
		return xerrors.Errorf("%s cannot move token of %s: %w", caller, owner, types.ErrNotAuthorized)
	}
	l.owners[key] = to
	delete(l.approved, key)
	return nil
}

func (l *MemUniqueLedger) Mint(ctx context.Context, collection, to types.Address, tokenID types.TokenID) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	key := tokenKey{collection, tokenID}
	if _, ok := l.owners[key]; ok {
		return xerrors.Errorf("token %s/%s already minted", collection, tokenID)
	}
	l.owners[key] = to
	return nil
}

type holdingKey struct {
	collection types.Address
	owner      types.Address
	tokenID    types.TokenID
}

// MemMultiLedger is an in-process MultiLedger.
type MemMultiLedger struct {
	lk        sync.Mutex
	balances  map[holdingKey]uint64
	operators map[operatorKey]bool
}

var _ MultiLedger = (*MemMultiLedger)(nil)

func NewMemMultiLedger() *MemMultiLedger {
	return &MemMultiLedger{
		balances:  make(map[holdingKey]uint64),
		operators: make(map[operatorKey]bool),
	}
}

func (l *MemMultiLedger) BalanceOf(ctx context.Context, collection, owner types.Address, tokenID types.TokenID) (uint64, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return l.balances[holdingKey{collection, owner, tokenID}], nil
}

func (l *MemMultiLedger) SetOperator(ctx context.Context, owner, collection, operator types.Address, approved bool) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	if approved {
		l.operators[operatorKey{collection, owner, operator}] = true
	} else {
		delete(l.operators, operatorKey{collection, owner, operator})
	}
	return nil
}

func (l *MemMultiLedger) IsOperator(ctx context.Context, owner, collection, operator types.Address) (bool, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	return l.operators[operatorKey{collection, owner, operator}], nil
}

func (l *MemMultiLedger) TransferFrom(ctx context.Context, caller, collection, from, to types.Address, tokenID types.TokenID, quantity uint64) error {
	l.lk.Lock()
	defer l.lk.Unlock()

	if caller != from && !l.operators[operatorKey{collection, from, caller}] {
		return xerrors.Errorf("%s cannot move tokens of %s: %w", caller, from, types.ErrNotAuthorized)
	}
	fromKey := holdingKey{collection, from, tokenID}
	balance := l.balances[fromKey]
	if balance < quantity {
		return xerrors.Errorf("%s holds %d of %s/%s, need %d: %w", from, balance, collection, tokenID, quantity, types.ErrInsufficientBalance)
	}
	l.balances[fromKey] = balance - quantity
	l.balances[holdingKey{collection, to, tokenID}] += quantity
	return nil
}

func (l *MemMultiLedger) Mint(ctx context.Context, collection, to types.Address, tokenID types.TokenID, quantity uint64) error {
	l.lk.Lock()
	defer l.lk.Unlock()
	l.balances[holdingKey{collection, to, tokenID}] += quantity
	return nil
}
