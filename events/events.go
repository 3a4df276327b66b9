package events

import (
	"errors"
	"time"

	"github.com/hannahhoward/go-pubsub"
	logging "github.com/ipfs/go-log/v2"

	"github.com/modular-market/market/types"
)

var log = logging.Logger("events")

type EventType string

const (
	AskCreated   EventType = "AskCreated"
	AskFilled    EventType = "AskFilled"
	AskCancelled EventType = "AskCancelled"

	OfferCreated   EventType = "OfferCreated"
	OfferFilled    EventType = "OfferFilled"
	OfferCancelled EventType = "OfferCancelled"

	AuctionCreated   EventType = "AuctionCreated"
	AuctionBid       EventType = "AuctionBid"
	AuctionSettled   EventType = "AuctionSettled"
	AuctionBoughtNow EventType = "AuctionBoughtNow"
	AuctionCancelled EventType = "AuctionCancelled"
)

// MarketEvent is emitted after a trading operation has committed.
type MarketEvent struct {
	Type       EventType
	Module     types.Address
	Collection types.Collection
	TokenID    types.TokenID
	Index      uint64
	Actor      types.Address
	Amount     types.Amount
	At         time.Time
}

// Subscriber is a callback run for every published market event.
type Subscriber func(evt MarketEvent)

func dispatcher(evt pubsub.Event, fn pubsub.SubscriberFn) error {
	me, ok := evt.(MarketEvent)
	if !ok {
		return errors.New("wrong type of event")
	}
	cb, ok := fn.(Subscriber)
	if !ok {
		return errors.New("wrong type of callback")
	}
	cb(me)
	return nil
}

// Bus fans market events out to in-process subscribers.
type Bus struct {
	pubsub *pubsub.PubSub
}

func NewBus() *Bus {
	return &Bus{pubsub: pubsub.New(dispatcher)}
}

func (b *Bus) Publish(evt MarketEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	if err := b.pubsub.Publish(evt); err != nil {
		log.Debugf("publish %s for %s/%d err: %s", evt.Type, evt.Collection, evt.TokenID, err)
	}
}

// Subscribe registers a callback; the returned function removes it.
func (b *Bus) Subscribe(sub Subscriber) func() {
	return b.pubsub.Subscribe(sub)
}
