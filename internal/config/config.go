package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores the settings of both binaries.
type Config struct {
	Port     int
	DB       DB
	Bus      Bus
	Redis    Redis
	Delivery Delivery
	Log      Log
	Debug    Debug
}

// DB is the postgres connection.
type DB struct {
	Host     string
	Port     string
	User     string
	Pass     string
	Name     string
	MaxConns int32
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// List of bus kinds
const (
	BusAMQP  = "amqp"
	BusKafka = "kafka"
	BusLocal = "local"
)

// Bus selects and configures the event transport.
type Bus struct {
	Kind     string
	URL      string
	Exchange string
	Brokers  []string
}

// Redis configures the inbox. An empty Addr disables it.
type Redis struct {
	Addr     string
	Password string
	DB       int
	InboxTTL time.Duration
}

// Delivery tunes the orchestrator and its background loops.
type Delivery struct {
	TickInterval        time.Duration
	SubscribeDelay      time.Duration
	OperationTimeout    time.Duration
	PoolAuditSchedule   string
	Picker              string
	SimulateProbability float64
}

// Log selects the logging backend and level.
type Log struct {
	Backend string
	Level   string
}

// Debug configures the ops listener (metrics, readiness, pprof). An empty Addr disables it.
type Debug struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     defaultPort,
		DB:       defaultDB,
		Bus:      defaultBus,
		Redis:    defaultRedis,
		Delivery: defaultDelivery,
		Log:      defaultLog,
	}
	cfg.Bus.Brokers = append([]string(nil), defaultBus.Brokers...)

	e := envReader{}
	cfg.Port = e.integer("PORT", cfg.Port)

	cfg.DB.Host = e.str("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = e.str("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = e.str("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = e.str("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = e.str("POSTGRES_DB", cfg.DB.Name)
	cfg.DB.MaxConns = int32(e.integer("POSTGRES_MAX_CONNS", int(cfg.DB.MaxConns)))

	cfg.Bus.Kind = strings.ToLower(e.str("BUS_KIND", cfg.Bus.Kind))
	cfg.Bus.URL = e.str("AMQP_URL", cfg.Bus.URL)
	cfg.Bus.Exchange = e.str("AMQP_EXCHANGE", cfg.Bus.Exchange)
	cfg.Bus.Brokers = e.list("KAFKA_BROKERS", cfg.Bus.Brokers)

	cfg.Redis.Addr = e.str("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = e.str("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = e.integer("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.InboxTTL = e.duration("INBOX_TTL", cfg.Redis.InboxTTL)

	cfg.Delivery.TickInterval = e.duration("DELIVERY_TICK_INTERVAL", cfg.Delivery.TickInterval)
	cfg.Delivery.SubscribeDelay = e.duration("DELIVERY_SUBSCRIBE_DELAY", cfg.Delivery.SubscribeDelay)
	cfg.Delivery.OperationTimeout = e.duration("DELIVERY_OPERATION_TIMEOUT", cfg.Delivery.OperationTimeout)
	cfg.Delivery.PoolAuditSchedule = e.str("POOL_AUDIT_SCHEDULE", cfg.Delivery.PoolAuditSchedule)
	cfg.Delivery.Picker = e.str("COURIER_PICKER", cfg.Delivery.Picker)
	cfg.Delivery.SimulateProbability = e.float("SIMULATE_PROBABILITY", cfg.Delivery.SimulateProbability)

	cfg.Log.Backend = strings.ToLower(e.str("LOG_BACKEND", cfg.Log.Backend))
	cfg.Log.Level = strings.ToLower(e.str("LOG_LEVEL", cfg.Log.Level))

	cfg.Debug.Addr = e.str("DEBUG_ADDR", cfg.Debug.Addr)
	cfg.Debug.User = e.str("DEBUG_USER", cfg.Debug.User)
	cfg.Debug.Pass = e.str("DEBUG_PASS", cfg.Debug.Pass)

	if e.err != nil {
		return nil, e.err
	}

	pflag.CommandLine.ParseErrorsWhitelist.UnknownFlags = true
	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Bus.Kind, "bus", cfg.Bus.Kind, "event bus transport: amqp, kafka or local")
	pflag.DurationVar(&cfg.Delivery.TickInterval, "tick", cfg.Delivery.TickInterval, "timer driver interval")
	pflag.StringVar(&cfg.Debug.Addr, "debug-addr", cfg.Debug.Addr, "ops listener address, empty to disable")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.DB.Port, err)
	}
	if c.DB.MaxConns <= 0 {
		return fmt.Errorf("invalid POSTGRES_MAX_CONNS: %d", c.DB.MaxConns)
	}
	switch c.Bus.Kind {
	case BusAMQP:
		if c.Bus.URL == "" {
			return fmt.Errorf("AMQP_URL is required for bus %q", c.Bus.Kind)
		}
	case BusKafka:
		if len(c.Bus.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for bus %q", c.Bus.Kind)
		}
	case BusLocal:
	default:
		return fmt.Errorf("unknown bus kind %q", c.Bus.Kind)
	}
	if c.Delivery.TickInterval <= 0 {
		return fmt.Errorf("invalid DELIVERY_TICK_INTERVAL: %s", c.Delivery.TickInterval)
	}
	if c.Delivery.SubscribeDelay < 0 {
		return fmt.Errorf("invalid DELIVERY_SUBSCRIBE_DELAY: %s", c.Delivery.SubscribeDelay)
	}
	if c.Delivery.SimulateProbability < 0 || c.Delivery.SimulateProbability > 1 {
		return fmt.Errorf("invalid SIMULATE_PROBABILITY: %v", c.Delivery.SimulateProbability)
	}
	switch c.Log.Backend {
	case LogSlog, LogZap:
	default:
		return fmt.Errorf("unknown log backend %q", c.Log.Backend)
	}
	return nil
}

// envReader keeps the first parse error.
type envReader struct{ err error }

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func (e *envReader) list(key string, def []string) []string {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}
