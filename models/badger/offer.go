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

type badgerOfferRepo struct {
	ds datastore.Batching
}

var _ repo.OfferRepo = (*badgerOfferRepo)(nil)

func NewOfferRepo(ds OfferDS) repo.OfferRepo {
	return &badgerOfferRepo{ds: ds}
}

func offerKey(collection types.Collection, tokenID types.TokenID, index uint64) datastore.Key {
	return datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String(), fmt.Sprintf("%d", index)})
}

func (r *badgerOfferRepo) SaveOffer(ctx context.Context, offer *types.Offer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, offerKey(offer.Collection, offer.TokenID, offer.Index), data)
}

func (r *badgerOfferRepo) GetOffer(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Offer, error) {
	data, err := r.ds.Get(ctx, offerKey(collection, tokenID, index))
	if err != nil {
		return nil, err
	}
	var offer types.Offer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *badgerOfferRepo) ListOffers(ctx context.Context, collection types.Collection, tokenID types.TokenID) (offers []*types.Offer, err error) {
	prefix := datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String()}).String()
	result, err := r.ds.Query(ctx, query.Query{Prefix: prefix})
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
		var offer types.Offer
		if err := json.Unmarshal(entry.Value, &offer); err != nil {
			return nil, err
		}
		offers = append(offers, &offer)
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].Index < offers[j].Index })
	return offers, nil
}
