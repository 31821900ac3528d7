package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/skyreserve/booking-service/config"
	"github.com/skyreserve/booking-service/internal/bootstrap"
	"github.com/skyreserve/booking-service/internal/flightclient"
	"github.com/skyreserve/booking-service/internal/kafka"
	"github.com/skyreserve/booking-service/internal/ledger"
	"github.com/skyreserve/booking-service/internal/repository"
	"github.com/skyreserve/booking-service/internal/service/booking"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	idemLedger := ledger.NewRedisLedger(cfg.Redis, cfg.Booking.LedgerRetention())
	inventory := flightclient.New(cfg.FlightService.BaseURL, cfg.FlightService.Timeout())
	store := repository.NewBookingStore(pool)

	bookingService := booking.NewBookingService(
		store,
		inventory,
		idemLedger,
		producer,
		logger,
		cfg.Booking.PaymentExpiry(),
		booking.WithBookingTopic(cfg.Kafka.BookingEventsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, bookingService); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
