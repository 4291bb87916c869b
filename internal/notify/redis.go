package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"inreader-backend/internal/shared/telemetry"
)

// DefaultChannel carries updates between API processes.
const DefaultChannel = "inreader:transcription-updates"

// RedisClient is the subset of go-redis used by the broker.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Broker fans updates out through Redis pub/sub so that every process
// delivers them to its own local rooms.
type Broker struct {
	Client  RedisClient
	Hub     *Hub
	Channel string
}

type envelope struct {
	UserID string `json:"userId"`
	Update Update `json:"update"`
}

// NewBroker constructs a Broker on the default channel.
func NewBroker(client RedisClient, hub *Hub) *Broker {
	return &Broker{Client: client, Hub: hub, Channel: DefaultChannel}
}

// Publish sends u to the shared channel.
func (b *Broker) Publish(ctx context.Context, userID string, u Update) error {
	data, err := json.Marshal(envelope{UserID: userID, Update: u})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	if err := b.Client.Publish(ctx, b.Channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run delivers updates from the channel to the local hub until ctx ends.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.Client.Subscribe(ctx, b.Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	telemetry.Info("notify.subscribed", map[string]any{"channel": b.Channel})

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(msg.Payload)
		}
	}
}

func (b *Broker) dispatch(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		telemetry.Warn("notify.bad_payload", map[string]any{"error": err})
		return
	}
	b.Hub.Deliver(env.UserID, Frame{Event: EventTranscriptionUpdate, Data: env.Update})
}

var _ Publisher = (*Broker)(nil)
