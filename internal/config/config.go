// Package config provides configuration structures and validation for the
// application. It covers the HTTP gateway, databases, message queue, cache
// and the lending parameters of the affordability engine.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field covers a
// major subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Lending     LendingConfig
}

// ApplicationConfig identifies the running service.
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig holds broker, topic and consumer tuning settings.
type KafkaConfig struct {
	Brokers           string
	TransferTopic     string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// PostgresConfig holds the connection pool and migration settings.
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig holds the ledger store connection settings.
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig holds the plan cache settings. Disabled runs the planner
// without a cache, which tests and local tooling rely on.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PlanTTL  time.Duration
	Disabled bool
}

// OutboxConfig tunes the outbox poller.
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig caps concurrent transfer processing.
type WorkerPoolConfig struct {
	Size int
}

// LendingConfig holds the tunable lending parameters. The regulatory ratio
// ceiling is expressed in percent. ExternalMaxAmount is a hard principal
// ceiling in whole currency units where zero disables it.
type LendingConfig struct {
	RatioCeilingPct     float64
	DefaultCurrency     string
	ExternalMaxAmount   int64
	DefaultSavingMonths int
}

// violations collects validation failures so startup can report all of them
// at once instead of one restart per mistake.
type violations []string

func (v *violations) requirePositive(ok bool, name string) {
	if !ok {
		*v = append(*v, name+" must be greater than 0")
	}
}

func (v *violations) requireSet(value, name string) {
	if value == "" {
		*v = append(*v, name+" is required")
	}
}

func (v *violations) add(msg string) {
	*v = append(*v, msg)
}

func (c *Config) validate() error {
	var v violations

	v.requirePositive(c.Server.Port > 0, "SERVER_PORT")
	v.requirePositive(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT")
	v.requirePositive(c.Server.ReadTimeout > 0, "SERVER_READ_TIMEOUT")
	v.requirePositive(c.Server.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT")
	v.requirePositive(c.Server.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT")

	v.requireSet(c.Kafka.Brokers, "KAFKA_BROKERS")
	v.requireSet(c.Kafka.TransferTopic, "KAFKA_TRANSFER_TOPIC")
	v.requireSet(c.Kafka.ConsumerGroup, "KAFKA_CONSUMER_GROUP")
	v.requireSet(c.Kafka.DLQTopic, "KAFKA_DLQ_TOPIC")
	v.requirePositive(c.Kafka.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES")
	v.requirePositive(c.Kafka.MaxBytes > 0, "KAFKA_CONSUMER_MAX_BYTES")
	v.requirePositive(c.Kafka.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT")

	v.requireSet(c.Postgres.URL, "POSTGRES_URL")
	v.requirePositive(c.Postgres.MaxConns > 0, "POSTGRES_MAX_CONNS")
	v.requirePositive(c.Postgres.MinConns > 0, "POSTGRES_MIN_CONNS")
	v.requirePositive(c.Postgres.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME")
	v.requirePositive(c.Postgres.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME")

	v.requireSet(c.MongoDB.URI, "MONGO_URI")
	v.requireSet(c.MongoDB.Database, "MONGO_DATABASE")
	v.requirePositive(c.MongoDB.Timeout > 0, "MONGO_TIMEOUT")
	v.requirePositive(c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE")
	v.requirePositive(c.MongoDB.MinPoolSize > 0, "MONGO_MIN_POOL_SIZE")
	v.requirePositive(c.MongoDB.MaxConnIdleTime > 0, "MONGO_MAX_CONN_IDLE_TIME")

	if !c.Redis.Disabled {
		v.requireSet(c.Redis.Addr, "REDIS_ADDR")
		v.requirePositive(c.Redis.PlanTTL > 0, "REDIS_PLAN_TTL")
	}

	v.requirePositive(c.Outbox.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL")
	v.requirePositive(c.Outbox.BatchSize > 0, "OUTBOX_BATCH_SIZE")
	v.requirePositive(c.Outbox.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS")

	v.requirePositive(c.WorkerPool.Size > 0, "WORKER_POOL_SIZE")

	if c.Lending.RatioCeilingPct <= 0 || c.Lending.RatioCeilingPct > 100 {
		v.add("LENDING_RATIO_CEILING_PCT must be in (0, 100]")
	}
	if len(c.Lending.DefaultCurrency) != 3 {
		v.add("LENDING_DEFAULT_CURRENCY must be a 3-letter code")
	}
	if c.Lending.ExternalMaxAmount < 0 {
		v.add("LENDING_EXTERNAL_MAX_AMOUNT must not be negative")
	}
	v.requirePositive(c.Lending.DefaultSavingMonths > 0, "LENDING_DEFAULT_SAVING_MONTHS")

	if len(v) > 0 {
		return errors.New(strings.Join(v, ", "))
	}
	return nil
}
