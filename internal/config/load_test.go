package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testRedisPassword := "s3cret"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nREDIS_PASSWORD=%s\n",
		testAppName, testPort, testLogLevel, testRedisPassword,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testRedisPassword, cfg.Redis.Password)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "transfer_requests", cfg.Kafka.TransferTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.PlanTTL)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, 40.0, cfg.Lending.RatioCeilingPct)
	assert.Equal(t, "KRW", cfg.Lending.DefaultCurrency)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)
	assert.Equal(t, testRedisPassword, cfgWithName.Redis.Password)
}

func TestLoadConfig_RedisPasswordDefaultsEmpty(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := redisConfig(v)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, "localhost:6379", cfg.Addr)
}

func TestConfig_Validate(t *testing.T) {
	defaultConfig := func() *Config {
		v := viper.New()
		setDefaults(v)
		return &Config{
			Application: ApplicationConfig{Env: v.GetString("APP_ENV"), Name: v.GetString("APP_NAME")},
			Logging:     LoggingConfig{Level: v.GetString("LOG_LEVEL")},
			Server:      serverConfig(v),
			Kafka:       kafkaConfig(v),
			Postgres:    postgresConfig(v),
			MongoDB:     mongoConfig(v),
			Redis:       redisConfig(v),
			Outbox:      outboxConfig(v),
			WorkerPool:  WorkerPoolConfig{Size: v.GetInt("WORKER_POOL_SIZE")},
			Lending:     lendingConfig(v),
		}
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, defaultConfig().validate())
	})

	t.Run("collects every violation into one error", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Server.Port = 0
		cfg.Kafka.Brokers = ""
		cfg.Lending.RatioCeilingPct = 120

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT must be greater than 0")
		assert.Contains(t, err.Error(), "KAFKA_BROKERS is required")
		assert.Contains(t, err.Error(), "LENDING_RATIO_CEILING_PCT must be in (0, 100]")
	})

	t.Run("disabled cache skips Redis requirements", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Redis.Disabled = true
		cfg.Redis.Addr = ""
		cfg.Redis.PlanTTL = 0

		assert.NoError(t, cfg.validate())
	})
}
