package pricefloor

import (
	"context"
	"errors"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

var log = logging.Logger("pricefloor")

// Oracle publishes the minimum unit price per (collection, currency).
// Listings and auction reserves below the floor are rejected by the
// trading engines.
type Oracle struct {
	floors repo.FloorPriceRepo
	admin  types.Address
}

func NewOracle(r repo.Repo, admin types.Address) *Oracle {
	return &Oracle{floors: r.FloorPriceRepo(), admin: admin}
}

func (o *Oracle) SetFloorPrice(ctx context.Context, caller types.Address, collection types.Collection, currency types.Address, price types.Amount) error {
	if caller != o.admin {
		return xerrors.Errorf("%s is not the market admin: %w", caller, types.ErrNotAuthorized)
	}
	err := o.floors.SetFloorPrice(ctx, &types.FloorPrice{
		Collection: collection,
		Currency:   currency,
		Price:      types.SafeAmount(price),
	})
	if err != nil {
		return err
	}
	log.Infow("floor price updated", "collection", collection, "currency", currency, "price", price)
	return nil
}

// FloorPrice returns zero when no floor was ever published for the pair.
func (o *Oracle) FloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (types.Amount, error) {
	fp, err := o.floors.GetFloorPrice(ctx, collection, currency)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return types.ZeroAmount(), nil
		}
		return types.Amount{}, err
	}
	return types.SafeAmount(fp.Price), nil
}
