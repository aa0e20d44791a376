package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const publishTimeout = 3 * time.Second

// RedisGateway публикует события через Redis pub/sub и отдает подписки
// для SSE-моста. Публикация не ждет доставки.
type RedisGateway struct {
	client *redis.Client
}

func NewRedisGateway(client *redis.Client) *RedisGateway {
	return &RedisGateway{client: client}
}

func (g *RedisGateway) Publish(channel, event string, payload map[string]interface{}) {
	raw, err := json.Marshal(Event{
		Channel: channel,
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		log.Printf("Gateway: failed to marshal event %s: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := g.client.Publish(ctx, channel, raw).Err(); err != nil {
		log.Printf("Gateway: failed to publish %s to %s: %v", event, channel, err)
	}
}

// Subscribe возвращает поток событий указанных каналов и функцию отписки.
func (g *RedisGateway) Subscribe(ctx context.Context, channels ...string) (<-chan Event, func()) {
	sub := g.client.Subscribe(ctx, channels...)
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Gateway: failed to decode event from %s: %v", msg.Channel, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

func (g *RedisGateway) Close() error {
	return nil // клиент Redis закрывается владельцем
}
