package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultChannel = "barber:appointments"

// RedisFeed relays events through a Redis channel so every API replica
// serves the same live feed.
type RedisFeed struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewRedisFeed(client *redis.Client, hub *Hub, log *zap.Logger) *RedisFeed {
	return &RedisFeed{
		client:  client,
		channel: DefaultChannel,
		hub:     hub,
		log:     log,
	}
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.Warn("encode event", zap.Error(err))
		return
	}

	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		f.log.Warn("publish event, delivering locally",
			zap.String("type", ev.Type),
			zap.Error(err),
		)
		f.hub.Publish(ctx, ev)
	}
}

func (f *RedisFeed) Subscribe() (<-chan Event, func()) {
	return f.hub.Subscribe()
}

// Run forwards channel messages to the local hub until ctx ends.
func (f *RedisFeed) Run(ctx context.Context) {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Warn("decode event", zap.Error(err))
				continue
			}
			f.hub.Publish(ctx, ev)
		}
	}
}

var (
	_ Feed = (*Hub)(nil)
	_ Feed = (*RedisFeed)(nil)
)
