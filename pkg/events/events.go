// Package events fans ledger and chain events out to in-process subscribers
// (metrics, logging). Events are published only after the originating call
// has committed.
package events

import (
	evbus "github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
)

const (
	TopicFarmerRegistered = "ledger:farmer-registered"
	TopicYieldUpdated     = "ledger:yield-updated"
	TopicFarmerRetired    = "ledger:farmer-deactivated"
	TopicPoolCreated      = "ledger:pool-created"
	TopicStaked           = "ledger:staked"
	TopicUnstaked         = "ledger:unstaked"
	TopicClaimed          = "ledger:claimed"
	TopicShutdown         = "ledger:shutdown"
	TopicBlockMined       = "chain:block-mined"
)

var AllTopics = []string{
	TopicFarmerRegistered, TopicYieldUpdated, TopicFarmerRetired, TopicPoolCreated,
	TopicStaked, TopicUnstaked, TopicClaimed, TopicShutdown, TopicBlockMined,
}

type Event struct {
	Topic    string
	Caller   string
	FarmerID uint64
	PoolID   uint64
	Amount   decimal.Decimal
	Height   uint64
}

type Handler func(Event)

type Bus struct{ b evbus.Bus }

func New() *Bus { return &Bus{b: evbus.New()} }

func (b *Bus) Subscribe(topic string, h Handler) error {
	return b.b.Subscribe(topic, h)
}

// Publish delivers ev synchronously to every subscriber of ev.Topic.
// A nil Bus drops the event.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.b.Publish(ev.Topic, ev)
}
