package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/config"
	"gift-battle/internal/feed"

	"github.com/redis/go-redis/v9"
)

func main() {
	interval := flag.Duration("interval", 0, "delay between events (defaults to DEMO_FEED_INTERVAL_MS)")
	count := flag.Int("count", 0, "stop after this many events (0 runs until interrupted)")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is not set")
	}
	if *interval <= 0 {
		*interval = time.Duration(cfg.DemoFeedIntervalMillis) * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connection failed addr=%s: %v", cfg.RedisAddr, err)
	}

	publisher := feed.NewPublisher(client, cfg.FeedStream)
	sim := feed.NewSimulator(*seed)
	sent := 0
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	log.Printf("publishing simulated events stream=%s interval=%s", cfg.FeedStream, *interval)
	sim.Run(runCtx, *interval, func(in battle.Incoming) error {
		if err := publisher.Publish(runCtx, in); err != nil {
			return err
		}
		sent++
		log.Printf("published type=%s username=%s team=%q gift_value=%d", in.Kind, in.Username, in.Team, in.GiftValue)
		if *count > 0 && sent >= *count {
			cancel()
		}
		return nil
	})
	log.Printf("published %d events", sent)
}
