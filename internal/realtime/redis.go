package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
)

// RedisBridge publishes local changes on a Redis channel and relays the
// channel back into a Broker, so every instance applies every change once.
type RedisBridge struct {
	client  *redis.Client
	channel string
	broker  *Broker
	log     *logger.Logger
}

func NewRedisBridge(client *redis.Client, channel string, broker *Broker, log *logger.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		broker:  broker,
		log:     log.Named("redis_bridge"),
	}
}

func (r *RedisBridge) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run relays messages until ctx ends. go-redis reconnects the underlying
// subscription on its own; a closed channel means the client was shut down.
func (r *RedisBridge) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		r.log.Error().Err(err).Str("channel", r.channel).Msg("subscribe failed")
		r.broker.Fail(fmt.Errorf("%w: %v", ErrChannel, err))
		return
	}

	r.log.Info().Str("channel", r.channel).Msg("relaying table changes")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				r.broker.Fail(ErrChannel)
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.Warn().Err(err).Msg("discarding malformed message")
				continue
			}
			_ = r.broker.Publish(ctx, ev)
		}
	}
}
