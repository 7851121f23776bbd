package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gift-battle/internal/battle"

	"github.com/redis/go-redis/v9"
)

const (
	batchSize     = 100
	blockDuration = time.Second
	retryDelay    = time.Second
)

// Sink receives decoded events. *battle.Machine satisfies it.
type Sink interface {
	Ingest(in battle.Incoming) (battle.Snapshot, error)
	SetConnected(connected bool)
}

type StreamConfig struct {
	Stream   string
	Group    string
	Consumer string
}

// Consumer reads viewer events from a Redis stream as part of a consumer group.
type Consumer struct {
	client *redis.Client
	sink   Sink
	cfg    StreamConfig
}

func NewConsumer(client *redis.Client, sink Sink, cfg StreamConfig) *Consumer {
	return &Consumer{client: client, sink: sink, cfg: cfg}
}

// Run consumes until ctx is cancelled. The sink is marked connected while reads
// succeed and disconnected while they fail.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.createGroup(ctx); err != nil {
		return err
	}
	log.Printf("feed consumer started stream=%s group=%s consumer=%s", c.cfg.Stream, c.cfg.Group, c.cfg.Consumer)
	defer c.sink.SetConnected(false)

	for {
		if ctx.Err() != nil {
			return nil
		}
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    batchSize,
			Block:    blockDuration,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				c.sink.SetConnected(true)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.sink.SetConnected(false)
			log.Printf("feed read failed stream=%s err=%v", c.cfg.Stream, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}
		c.sink.SetConnected(true)
		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.process(ctx, message)
			}
		}
	}
}

func (c *Consumer) createGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group %s on %s: %w", c.cfg.Group, c.cfg.Stream, err)
	}
	return nil
}

// process applies one entry and always acks it: malformed or rejected events are
// logged, not redelivered.
func (c *Consumer) process(ctx context.Context, message redis.XMessage) {
	if err := Apply(c.sink, message.Values); err != nil {
		log.Printf("feed event rejected id=%s err=%v", message.ID, err)
	}
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, message.ID).Err(); err != nil {
		log.Printf("feed ack failed id=%s stream=%s err=%v", message.ID, c.cfg.Stream, err)
	}
}

// Apply decodes the "data" field of a stream entry and hands it to the sink.
func Apply(sink Sink, values map[string]interface{}) error {
	raw, ok := values["data"].(string)
	if !ok {
		return fmt.Errorf("missing data field: %v", values)
	}
	in, err := Decode([]byte(raw))
	if err != nil {
		return err
	}
	_, err = sink.Ingest(in)
	return err
}
