package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modular-market/market/types"
)

func TestBus(t *testing.T) {
	bus := NewBus()
	collection := types.NewCollection(types.ClassUnique, "0xc011ec7721")

	var got []MarketEvent
	unsub := bus.Subscribe(func(evt MarketEvent) {
		got = append(got, evt)
	})

	bus.Publish(MarketEvent{Type: AskCreated, Collection: collection, TokenID: 1, Index: 1})
	bus.Publish(MarketEvent{Type: AskFilled, Collection: collection, TokenID: 1, Index: 1, Amount: types.NewAmount(100)})

	assert.Len(t, got, 2)
	assert.Equal(t, AskCreated, got[0].Type)
	assert.Equal(t, AskFilled, got[1].Type)
	assert.False(t, got[0].At.IsZero())

	unsub()
	bus.Publish(MarketEvent{Type: AskCancelled, Collection: collection, TokenID: 1, Index: 1})
	assert.Len(t, got, 2)
}
