package badger

import (
	"testing"

	badger "github.com/ipfs/go-ds-badger2"
	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/models/repo"
)

func setup(t *testing.T) repo.Repo {
	r, err := NewMemRepo()
	assert.Nil(t, err)
	return r
}

// NewMemRepo backs the full repo with an in-memory badger instance; used
// by tests and by embedders that want a throwaway market.
func NewMemRepo() (repo.Repo, error) {
	opts := badger.DefaultOptions
	opts.InMemory = true
	db, err := badger.NewDatastore("", &opts)
	if err != nil {
		return nil, err
	}
	return NewBadgerRepo(NewBadgerDSParams(db)), nil
}
