package badger

import (
	"context"
	"encoding/json"

	"github.com/ipfs/go-datastore"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

type badgerFloorPriceRepo struct {
	ds datastore.Batching
}

var _ repo.FloorPriceRepo = (*badgerFloorPriceRepo)(nil)

func NewFloorPriceRepo(ds FloorPriceDS) repo.FloorPriceRepo {
	return &badgerFloorPriceRepo{ds: ds}
}

func floorPriceKey(collection types.Collection, currency types.Address) datastore.Key {
	return datastore.KeyWithNamespaces([]string{collection.Key(), currencyKey(currency)})
}

// currencyKey keeps the native currency's empty address representable as a
// datastore key segment.
func currencyKey(currency types.Address) string {
	if currency.Empty() {
		return "native"
	}
	return currency.String()
}

func (r *badgerFloorPriceRepo) SetFloorPrice(ctx context.Context, fp *types.FloorPrice) error {
	data, err := json.Marshal(fp)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, floorPriceKey(fp.Collection, fp.Currency), data)
}

func (r *badgerFloorPriceRepo) GetFloorPrice(ctx context.Context, collection types.Collection, currency types.Address) (*types.FloorPrice, error) {
	data, err := r.ds.Get(ctx, floorPriceKey(collection, currency))
	if err != nil {
		return nil, err
	}
	var fp types.FloorPrice
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, err
	}
	return &fp, nil
}
