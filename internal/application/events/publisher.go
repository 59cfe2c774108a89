package events

import (
	"context"
	"encoding/json"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Channel carries every committed vehicle notification.
const Channel = "vehicle:events"

// Message is the wire form published on Channel.
type Message struct {
	Seq     uint64          `json:"seq"`
	Name    string          `json:"name"`
	Actor   string          `json:"actor"`
	Payload json.RawMessage `json:"payload"`
	Digest  string          `json:"digest"`
	At      int64           `json:"at"`
}

// RedisPublisher fans notifications out over Redis pub/sub.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{Client: rdb, Channel: Channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(Message{
		Seq:     n.Seq,
		Name:    n.Name,
		Actor:   n.Actor,
		Payload: json.RawMessage(n.Payload),
		Digest:  n.Digest,
		At:      n.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode notification %d: %w", n.Seq, err)
	}
	return p.Client.Publish(ctx, p.Channel, body).Err()
}
