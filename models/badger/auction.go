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

type badgerAuctionRepo struct {
	ds datastore.Batching
}

var _ repo.AuctionRepo = (*badgerAuctionRepo)(nil)

func NewAuctionRepo(ds AuctionDS) repo.AuctionRepo {
	return &badgerAuctionRepo{ds: ds}
}

func auctionKey(collection types.Collection, tokenID types.TokenID, index uint64) datastore.Key {
	return datastore.KeyWithNamespaces([]string{collection.Key(), tokenID.String(), fmt.Sprintf("%d", index)})
}

func (r *badgerAuctionRepo) SaveAuction(ctx context.Context, auction *types.Auction) error {
	data, err := json.Marshal(auction)
	if err != nil {
		return err
	}
	return r.ds.Put(ctx, auctionKey(auction.Collection, auction.TokenID, auction.Index), data)
}

func (r *badgerAuctionRepo) GetAuction(ctx context.Context, collection types.Collection, tokenID types.TokenID, index uint64) (*types.Auction, error) {
	data, err := r.ds.Get(ctx, auctionKey(collection, tokenID, index))
	if err != nil {
		return nil, err
	}
	var auction types.Auction
	if err := json.Unmarshal(data, &auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (r *badgerAuctionRepo) ListAuctions(ctx context.Context, collection types.Collection, tokenID types.TokenID) (auctions []*types.Auction, err error) {
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
		var auction types.Auction
		if err := json.Unmarshal(entry.Value, &auction); err != nil {
			return nil, err
		}
		auctions = append(auctions, &auction)
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].Index < auctions[j].Index })
	return auctions, nil
}

func (r *badgerAuctionRepo) ListAuctionsBySeller(ctx context.Context, collection types.Collection, tokenID types.TokenID, seller types.Address) ([]*types.Auction, error) {
	all, err := r.ListAuctions(ctx, collection, tokenID)
	if err != nil {
		return nil, err
	}
	auctions := make([]*types.Auction, 0, len(all))
	for _, auction := range all {
		if auction.Seller == seller {
			auctions = append(auctions, auction)
		}
	}
	return auctions, nil
}
