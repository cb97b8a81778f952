package event

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	messagebus "github.com/vardius/message-bus"
)

type Topic string

const (
	// ThumbnailConfigChanged carries the new sizefit.Config.
	ThumbnailConfigChanged Topic = "event-thumbnail-config-changed"
)

// Broker delivers published messages to subscribers asynchronously.
// Each subscriber has its own queue and receives messages in publish order.
type Broker struct {
	bus    messagebus.MessageBus
	logger hclog.Logger
}

func NewBroker(queueSize int, logger hclog.Logger) *Broker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Broker{
		bus:    messagebus.New(queueSize),
		logger: logger,
	}
}

// Subscribe registers fn for topic. fn must be a function whose arguments
// match the data published to the topic.
func (b *Broker) Subscribe(topic Topic, fn interface{}) error {
	if err := b.bus.Subscribe(string(topic), fn); err != nil {
		return fmt.Errorf("could not subscribe to %s: %w", topic, err)
	}
	return nil
}

func (b *Broker) Unsubscribe(topic Topic, fn interface{}) error {
	return b.bus.Unsubscribe(string(topic), fn)
}

func (b *Broker) Publish(topic Topic, data ...interface{}) {
	b.logger.Trace("Publish", "topic", topic, "args", len(data))
	b.bus.Publish(string(topic), data...)
}

// Close stops delivering to subscribers of topic.
func (b *Broker) Close(topic Topic) {
	b.bus.Close(string(topic))
}
