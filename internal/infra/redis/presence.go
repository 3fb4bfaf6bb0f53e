package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence marks which tests are currently live. Best-effort liveness
// markers only; losing them costs nothing but visibility.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresence(client *redis.Client, ttl time.Duration) *Presence {
	return &Presence{client: client, ttl: ttl}
}

func (p *Presence) Mark(ctx context.Context, testID string) {
	if err := p.client.Set(ctx, p.key(testID), "1", p.ttl).Err(); err != nil {
		log.Printf("presence: mark %s: %v", testID, err)
	}
}

func (p *Presence) Clear(ctx context.Context, testID string) {
	if err := p.client.Del(ctx, p.key(testID)).Err(); err != nil {
		log.Printf("presence: clear %s: %v", testID, err)
	}
}

// Live reports whether the marker for a test is present.
func (p *Presence) Live(ctx context.Context, testID string) bool {
	n, err := p.client.Exists(ctx, p.key(testID)).Result()
	return err == nil && n > 0
}

func (p *Presence) key(testID string) string {
	return "test:live:" + testID
}
