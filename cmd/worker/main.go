package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/skyreserve/booking-service/config"
	"github.com/skyreserve/booking-service/internal/flightclient"
	"github.com/skyreserve/booking-service/internal/kafka"
	"github.com/skyreserve/booking-service/internal/ledger"
	"github.com/skyreserve/booking-service/internal/notify"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier(logger)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event booking.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.WithError(err).Warn("skipping undecodable booking event")
				return nil
			}
			return notifier.Notify(ctx, event)
		}); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("notifications consumer stopped")
		}
	}()

	sweepEvery := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	logger.WithField("interval", sweepEvery.String()).Info("expiry reaper started")

	for {
		select {
		case <-ticker.C:
			result, err := bookingService.ReapExpired(ctx)
			if err != nil {
				logger.WithError(err).Error("expiry sweep failed")
				continue
			}
			if result.Total > 0 {
				logger.WithFields(logrus.Fields{
					"total":     result.Total,
					"succeeded": result.Succeeded,
					"failed":    result.Failed,
				}).Info("expiry sweep finished")
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}
