package realtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/realtime"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBrokerRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry)
	sender := newFakeSender()
	sess := gateway.Connect(sender)
	gateway.HandleControl(sess, "join-live-test", "t1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bridge := realtime.NewBridge(client, "classroom:events", gateway)
	go func() { _ = bridge.Run(ctx) }()

	pub := realtime.NewPublisher(realtime.NewBrokerEmitter(client, "classroom:events"))
	lb := domain.Leaderboard{TestID: "t1", Entries: []domain.LeaderboardEntry{{UserID: "u1", Score: 3, Rank: 1}}}

	// The subscription is established asynchronously; republish until the
	// bridge delivers or we give up.
	deadline := time.After(3 * time.Second)
	for {
		pub.LeaderboardUpdated("t1", lb)
		select {
		case env := <-sender.msgs:
			if env.Type != domain.EventLeaderboardUpdate {
				t.Fatalf("expected %s, got %s", domain.EventLeaderboardUpdate, env.Type)
			}
			raw, ok := env.Payload.(json.RawMessage)
			if !ok {
				t.Fatalf("expected raw payload, got %T", env.Payload)
			}
			var got domain.Leaderboard
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if got.TestID != "t1" || len(got.Entries) != 1 || got.Entries[0].UserID != "u1" {
				t.Fatalf("unexpected leaderboard %+v", got)
			}
			return
		case <-deadline:
			t.Fatalf("bridge never delivered the published event")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
