package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storely/go-commerce-orders/internal/config"
	"github.com/storely/go-commerce-orders/internal/httpx"
	kafkax "github.com/storely/go-commerce-orders/internal/kafka"
	"github.com/storely/go-commerce-orders/internal/orders"
	"github.com/storely/go-commerce-orders/internal/postgres"
	"github.com/storely/go-commerce-orders/internal/redisx"
	"github.com/storely/go-commerce-orders/internal/reports"
	"github.com/storely/go-commerce-orders/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pLow := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockLow, 1024)
	pLow.Start(ctx)

	// Services & handlers
	svc := &orders.Service{
		Store:             &orders.PlacementRepo{DB: db},
		ProducerPlaced:    pPlaced,
		ProducerStockLow:  pLow,
		ServiceName:       cfg.ServiceName,
		LowStockThreshold: cfg.LowStockThreshold,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Svc:   svc,
		Repo:  &orders.Repo{DB: db},
		Redis: rdb,
	}
	oh.Register(router)

	rh := &httpx.ReportsHandler{
		Reports:           &reports.Reports{DB: db},
		LowStockThreshold: cfg.LowStockThreshold,
	}
	rh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close()
	pLow.Close()
	cancel()
	pPlaced.WaitClosed()
	pLow.WaitClosed()
}
