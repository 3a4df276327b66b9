package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

type badgerAskRepo struct {
	ds datastore.Batching
}

var _ repo.AskRepo = (*badgerAskRepo)(nil)

func NewAskRepo(ds AskDS) repo.AskRepo {
	return &badgerAskRepo{ds: ds}
}

func askKey(collection types.Collection, tokenID types.TokenID, index uint64) datastore.Key {
	return datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String(), fmt.Sprintf("%d", index)})
}

func askPrefix(collection types.Collection, tokenID types.TokenID) string {
	return datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String()}).String()
}

func (r *badgerAskRepo) SaveAsk(ctx context.Context, ask *types.Ask) error {
	data, err := json.Marshal(ask)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, askKey(ask.Collection, ask.TokenID, ask.Index), data)
}

func (r *badgerAskRepo) GetAsk(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Ask, error) {
	data, err := r.ds.Get(ctx, askKey(collection, tokenID, index))
	if err != nil {
		return nil, err
	}
	var ask types.Ask
	if err := json.Unmarshal(data, &ask); err != nil {
		return nil, err
	}
	return &ask, nil
}

func (r *badgerAskRepo) ListAsks(ctx context.Context, collection types.Collection, tokenID types.TokenID) (asks []*types.Ask, err error) {
	result, err := r.ds.Query(ctx, query.Query{Prefix: askPrefix(collection, tokenID)})
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := result.Close(); err == nil {
			err = closeErr
		}
	}()

	for entry := range result.Next() {
		if entry.Error != nil {
			return nil, entry.Error
		}
		var ask types.Ask
		if err := json.Unmarshal(entry.Value, &ask); err != nil {
			return nil, err
		}
		asks = append(asks, &ask)
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].Index < asks[j].Index })
	return asks, nil
}
