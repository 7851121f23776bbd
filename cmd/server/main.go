package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/config"
	"gift-battle/internal/db"
	"gift-battle/internal/feed"
	"gift-battle/internal/history"
	"gift-battle/internal/readmodel"
	"gift-battle/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo history.Repository = history.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		repo = history.NewGormStore(conn)
	} else {
		log.Printf("DATABASE_URL not set; keeping history in memory")
	}

	var cache readmodel.Cache = readmodel.NewMemoryCache()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis connection failed addr=%s: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		cache = readmodel.NewRedisCache(rdb, "")
	}

	reads := readmodel.NewService(repo, cache, readmodel.Options{
		LeaderboardTTL: time.Duration(cfg.LeaderboardRefreshSeconds) * time.Second,
		HistoryTTL:     time.Duration(cfg.HistoryRefreshSeconds) * time.Second,
	})
	machine := battle.NewMachine(battle.Settings{
		DefaultGoalScore: cfg.DefaultGoalScore,
		AutoAdvanceDelay: time.Duration(cfg.AutoAdvanceMillis) * time.Millisecond,
		RoundDuration:    time.Duration(cfg.RoundDurationSeconds) * time.Second,
	})
	srv := server.New(machine, repo, reads, cfg)

	switch {
	case cfg.DemoFeed:
		log.Printf("demo feed enabled interval_ms=%d", cfg.DemoFeedIntervalMillis)
		machine.SetConnected(true)
		sim := feed.NewSimulator(0)
		go sim.Run(ctx, time.Duration(cfg.DemoFeedIntervalMillis)*time.Millisecond, func(in battle.Incoming) error {
			_, err := machine.Ingest(in)
			if errors.Is(err, battle.ErrGameInactive) {
				return nil
			}
			return err
		})
	case rdb != nil:
		consumer := feed.NewConsumer(rdb, machine, feed.StreamConfig{
			Stream:   cfg.FeedStream,
			Group:    cfg.FeedGroup,
			Consumer: cfg.FeedConsumer,
		})
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Printf("feed consumer stopped err=%v", err)
			}
		}()
	default:
		log.Printf("no event feed configured; accepting events on POST /api/events only")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("gift-battle server listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	machine.ResetGame()
	log.Printf("gift-battle server stopped")
}
