package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	FlightService FlightServiceConfig `yaml:"flight_service"`
	Booking       BookingConfig       `yaml:"booking"`
	Worker        WorkerConfig        `yaml:"worker"`
}

type HTTPConfig struct {
	Address       string  `yaml:"address"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type FlightServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout bounds every call to the flight service; the booking transaction
// stays open across that call, so keep this tight.
func (f FlightServiceConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type BookingConfig struct {
	PaymentExpiryMinutes int `yaml:"payment_expiry_minutes"`
	LedgerRetentionHours int `yaml:"ledger_retention_hours"`
}

func (b BookingConfig) PaymentExpiry() time.Duration {
	if b.PaymentExpiryMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(b.PaymentExpiryMinutes) * time.Minute
}

func (b BookingConfig) LedgerRetention() time.Duration {
	if b.LedgerRetentionHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.LedgerRetentionHours) * time.Hour
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
