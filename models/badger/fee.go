package badger

import (
	"context"
	"encoding/json"

	"github.com/ipfs/go-datastore"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

type badgerFeeRepo struct {
	ds datastore.Batching
}

var _ repo.FeeRepo = (*badgerFeeRepo)(nil)

func NewFeeRepo(ds FeeDS) repo.FeeRepo {
	return &badgerFeeRepo{ds: ds}
}

func feeKey(module types.Address) datastore.Key {
	return datastore.NewKey(module.String())
}

func (r *badgerFeeRepo) SetFeeParams(ctx context.Context, params *types.FeeParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, feeKey(params.Module), data)
}

func (r *badgerFeeRepo) GetFeeParams(ctx context.Context, module types.Address) (*types.FeeParams, error) {
	data, err := r.ds.Get(ctx, feeKey(module))
	if err != nil {
		return nil, err
	}
	var params types.FeeParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return &params, nil
}
