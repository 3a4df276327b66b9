package utils

import "github.com/modular-market/market/types"

// TokenMutex serializes state mutations per (collection, token) pair.
// The trading engines hold one each so that no two operations on the
// same listing record interleave.
type TokenMutex struct {
	inner *KeyedMutex
}

func NewTokenMutex() *TokenMutex {
	return &TokenMutex{inner: NewKeyedMutex()}
}

// Lock takes the pair's lock and returns the matching unlock.
func (m *TokenMutex) Lock(collection types.Collection, tokenID types.TokenID) func() {
	key := collection.Key() + "/" + tokenID.String()
	m.inner.Lock(key)
	return func() { m.inner.Unlock(key) }
}
