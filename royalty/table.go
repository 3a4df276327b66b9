package royalty

import (
	"context"
	"errors"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

var log = logging.Logger("royalty")

// Table maps (collection, item) keys to royalty beneficiary lists. An
// entry keyed by types.WildcardTokenID covers every item of the
// collection; exact-item entries fully replace the wildcard for their
// item, the two sets are never merged.
type Table struct {
	royalties repo.RoyaltyRepo
	admin     types.Address
}

func NewTable(r repo.Repo, admin types.Address) *Table {
	return &Table{royalties: r.RoyaltyRepo(), admin: admin}
}

// SetBeneficiary upserts one beneficiary's share under the given key;
// bps 0 removes the beneficiary. The shares of one key may not sum past
// types.MaxBps.
func (t *Table) SetBeneficiary(ctx context.Context, caller, beneficiary types.Address, collection types.Collection, tokenID types.TokenID, bps uint16) error {
	if caller != t.admin {
		return xerrors.Errorf("%s is not the market admin: %w", caller, types.ErrNotAuthorized)
	}
	if beneficiary.Empty() {
		return xerrors.Errorf("royalty beneficiary is empty")
	}

	pieces, err := t.royalties.GetRoyalties(ctx, collection, tokenID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	updated := make([]types.RoyaltyPiece, 0, len(pieces)+1)
	for _, piece := range pieces {
		if piece.Beneficiary != beneficiary {
			updated = append(updated, piece)
		}
	}
	if bps > 0 {
		updated = append(updated, types.RoyaltyPiece{Beneficiary: beneficiary, Bps: bps})
	}

	var total uint32
	for _, piece := range updated {
		total += uint32(piece.Bps)
	}
	if total > uint32(types.MaxBps) {
		return xerrors.Errorf("royalties for %s/%s would total %d bps", collection, tokenID, total)
	}

	if err := t.royalties.SetRoyalties(ctx, collection, tokenID, updated); err != nil {
		return err
	}
	log.Infow("royalty entry updated", "collection", collection, "tokenId", tokenID, "beneficiary", beneficiary, "bps", bps)
	return nil
}

// GetRoyalty previews the royalty split of a gross amount: parallel
// slices of beneficiaries and their shares. Exact-item entries win over
// the collection wildcard; with neither present both slices are empty.
func (t *Table) GetRoyalty(ctx context.Context, collection types.Collection, tokenID types.TokenID, gross types.Amount) ([]types.Address, []types.Amount, error) {
	pieces, err := t.resolve(ctx, collection, tokenID)
	if err != nil {
		return nil, nil, err
	}

	beneficiaries := make([]types.Address, 0, len(pieces))
	amounts := make([]types.Amount, 0, len(pieces))
	for _, piece := range pieces {
		beneficiaries = append(beneficiaries, piece.Beneficiary)
		amounts = append(amounts, types.ShareOf(gross, piece.Bps))
	}
	return beneficiaries, amounts, nil
}

func (t *Table) resolve(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]types.RoyaltyPiece, error) {
	pieces, err := t.royalties.GetRoyalties(ctx, collection, tokenID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if len(pieces) > 0 {
		return pieces, nil
	}
	if tokenID == types.WildcardTokenID {
		return nil, nil
	}

	pieces, err = t.royalties.GetRoyalties(ctx, collection, types.WildcardTokenID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return pieces, nil
}
