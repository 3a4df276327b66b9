package badger

import (
	"context"
	"encoding/json"

	"github.com/ipfs/go-datastore"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

type badgerRoyaltyRepo struct {
	ds datastore.Batching
}

var _ repo.RoyaltyRepo = (*badgerRoyaltyRepo)(nil)

func NewRoyaltyRepo(ds RoyaltyDS) repo.RoyaltyRepo {
	return &badgerRoyaltyRepo{ds: ds}
}

func royaltyKey(collection types.Collection, tokenID types.TokenID) datastore.Key {
	return datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String()})
}

func (r *badgerRoyaltyRepo) SetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID, pieces []types.RoyaltyPiece) error {
	if pieces == nil {
		pieces = []types.RoyaltyPiece{}
	}
	data, err := json.Marshal(pieces)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, royaltyKey(collection, tokenID), data)
}

func (r *badgerRoyaltyRepo) GetRoyalties(ctx context.Context, collection types.Collection, tokenID types.TokenID) ([]types.RoyaltyPiece, error) {
	data, err := r.ds.Get(ctx, royaltyKey(collection, tokenID))
	if err != nil {
		return nil, err
	}
	var pieces []types.RoyaltyPiece
	if err := json.Unmarshal(data, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}
