package realtime

import (
	"context"
	"encoding/json"
	"log"

	"classroom-live-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// brokerEnvelope is the cross-process wire form of one published event.
type brokerEnvelope struct {
	Kind     string          `json:"kind"`
	EntityID string          `json:"entityId"`
	Event    string          `json:"event"`
	Payload  json.RawMessage `json:"payload"`
}

// BrokerEmitter publishes events to a shared Redis channel instead of
// fanning out locally. Paired with a Bridge per process, it extends room
// fan-out across horizontally scaled instances; ordering then follows
// broker delivery order rather than the strict single-process guarantee.
type BrokerEmitter struct {
	client  *redis.Client
	channel string
}

func NewBrokerEmitter(client *redis.Client, channel string) *BrokerEmitter {
	return &BrokerEmitter{client: client, channel: channel}
}

func (b *BrokerEmitter) Emit(room domain.RoomKey, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broker: marshal %s payload: %v", event, err)
		return
	}
	env, err := json.Marshal(brokerEnvelope{
		Kind:     string(room.Kind),
		EntityID: room.EntityID,
		Event:    event,
		Payload:  raw,
	})
	if err != nil {
		log.Printf("broker: marshal envelope for %s: %v", event, err)
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, env).Err(); err != nil {
		log.Printf("broker: publish %s for %s: %v", event, room, err)
	}
}

// Bridge subscribes to the broker channel and replays every envelope into
// the local gateway. Each process runs one bridge; a process only ever
// reaches the sessions it holds, so every process must consume the stream.
type Bridge struct {
	client  *redis.Client
	channel string
	gateway *Gateway
}

func NewBridge(client *redis.Client, channel string, gateway *Gateway) *Bridge {
	return &Bridge{client: client, channel: channel, gateway: gateway}
}

// Run blocks consuming broker messages until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env brokerEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("bridge: bad envelope: %v", err)
				continue
			}
			room := domain.RoomKey{Kind: domain.RoomKind(env.Kind), EntityID: env.EntityID}
			b.gateway.Emit(room, env.Event, env.Payload)
		}
	}
}
