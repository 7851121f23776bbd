package feed

import (
	"context"
	"fmt"

	"gift-battle/internal/battle"

	"github.com/redis/go-redis/v9"
)

const streamMaxLen = 10000

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Publish appends one event to the stream, trimming it to roughly streamMaxLen entries.
func (p *Publisher) Publish(ctx context.Context, in battle.Incoming) error {
	data, err := Encode(in)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	return nil
}
