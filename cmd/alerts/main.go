package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storely/go-commerce-orders/internal/config"
	"github.com/storely/go-commerce-orders/internal/inventory"
	kafkax "github.com/storely/go-commerce-orders/internal/kafka"
	"github.com/storely/go-commerce-orders/internal/orders"
	"github.com/storely/go-commerce-orders/internal/postgres"
	"github.com/storely/go-commerce-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &inventory.AlertService{
		Store: &inventory.NotificationRepo{DB: db},
		Dedup: &inventory.RedisDeduper{Client: rdb, Service: cfg.ServiceName + "-alerts"},
	}

	// Consumer
	group := getenv("ALERTS_GROUP", "alerts-svc")
	workers := mustAtoi(os.Getenv("ALERTS_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicStockLow, workers)

	go func() {
		log.Printf("alerts consumer started: group=%s topic=%s workers=%d", group, orders.TopicStockLow, workers)
		if err := cons.Start(ctx, svc.HandleStockLow); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
