package fees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/models/badger"
	"github.com/modular-market/market/types"
)

func TestFeeSettings(t *testing.T) {
	ctx := context.Background()
	r, err := badger.NewMemRepo()
	assert.NoError(t, err)

	admin := types.Address("0xad819")
	treasury := types.Address("0x72ea5")
	asksModule := types.Address("0xa5c5")
	s := NewSettings(r, admin)

	t.Run("unconfigured module pays nothing", func(t *testing.T) {
		params, err := s.FeeParams(ctx, asksModule)
		assert.NoError(t, err)
		assert.Equal(t, uint16(0), params.Bps)
	})

	t.Run("admin gated", func(t *testing.T) {
		err := s.SetFeeParams(ctx, "0xa11ce", asksModule, treasury, 250)
		assert.ErrorIs(t, err, types.ErrNotAuthorized)
	})

	t.Run("bps bounded", func(t *testing.T) {
		err := s.SetFeeParams(ctx, admin, asksModule, treasury, 10001)
		assert.Error(t, err)
	})

	t.Run("set and read back", func(t *testing.T) {
		assert.NoError(t, s.SetFeeParams(ctx, admin, asksModule, treasury, 250))

		params, err := s.FeeParams(ctx, asksModule)
		assert.NoError(t, err)
		assert.Equal(t, treasury, params.Recipient)
		assert.Equal(t, uint16(250), params.Bps)
	})
}
