package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsZeroAmount(t *testing.T) {
	assert.True(t, IsZeroAmount(ZeroAmount()))
	assert.True(t, IsZeroAmount(Amount{}))
	assert.False(t, IsZeroAmount(NewAmount(1)))

	// usable directly on expression results
	assert.True(t, IsZeroAmount(ShareOf(NewAmount(100), 0)))
	assert.False(t, IsZeroAmount(SafeAmount(NewAmount(5))))
}

func TestShareOf(t *testing.T) {
	assert.Equal(t, NewAmount(500), ShareOf(NewAmount(10000), 500))
	// rounds down
	assert.Equal(t, NewAmount(332), ShareOf(NewAmount(999), 3330))
}
