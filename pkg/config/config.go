package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"parkproof/pkg/client"
	"parkproof/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	GateSigningSecret string
	JWTSecret         string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	OccupancyCacheTTL time.Duration

	BookingHoldWindow      time.Duration
	ProfileReceiptValidity time.Duration
	TicketSweepInterval    time.Duration
	RiskAnalysisInterval   time.Duration

	FeeBase    int
	FeePerHour int

	KafkaEnabled        bool
	KafkaLifecycleTopic string
	KafkaDLQTopic       string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotenvErr := loadDotEnv()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		GateSigningSecret: getEnvStr(EnvGateSigningSecret, ""),
		JWTSecret:         getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RedisAddr:         getEnvStr(EnvRedisAddr, ""),
		RedisPassword:     getEnvStr(EnvRedisPassword, ""),
		RedisDB:           getEnvNum(EnvRedisDB, DefaultRedisDB),
		OccupancyCacheTTL: getEnvDuration(EnvOccupancyCacheTTL, DefaultOccupancyCacheTTL),

		BookingHoldWindow:      getEnvDuration(EnvBookingHoldWindow, DefaultBookingHoldWindow),
		ProfileReceiptValidity: getEnvDuration(EnvProfileReceiptValidity, DefaultProfileReceiptValidity),
		TicketSweepInterval:    getEnvDuration(EnvTicketSweepInterval, DefaultTicketSweepInterval),
		RiskAnalysisInterval:   getEnvDuration(EnvRiskAnalysisInterval, DefaultRiskAnalysisInterval),

		FeeBase:    getEnvNum(EnvFeeBase, DefaultFeeBase),
		FeePerHour: getEnvNum(EnvFeePerHour, DefaultFeePerHour),

		KafkaEnabled:        getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaLifecycleTopic: getEnvStr(EnvKafkaLifecycleTopic, DefaultKafkaLifecycleTopic),
		KafkaDLQTopic:       getEnvStr(EnvKafkaDLQTopic, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotenvErr != nil {
		cfg.Log.Warn("Failed to load .env file", "error", dotenvErr)
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, client.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"OccupancyCacheTTL", cfg.OccupancyCacheTTL},
		{"BookingHoldWindow", cfg.BookingHoldWindow},
		{"ProfileReceiptValidity", cfg.ProfileReceiptValidity},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.TicketSweepInterval < 0 {
		errors = append(errors, fmt.Sprintf("TicketSweepInterval cannot be negative, got: %s", cfg.TicketSweepInterval))
	} else if cfg.TicketSweepInterval > 0 && cfg.TicketSweepInterval < time.Second {
		errors = append(errors, fmt.Sprintf("TicketSweepInterval must be 0 (disabled) or at least 1s, got: %s", cfg.TicketSweepInterval))
	}

	if cfg.RiskAnalysisInterval < 0 {
		errors = append(errors, fmt.Sprintf("RiskAnalysisInterval cannot be negative, got: %s", cfg.RiskAnalysisInterval))
	} else if cfg.RiskAnalysisInterval > 0 && cfg.RiskAnalysisInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("RiskAnalysisInterval must be 0 (disabled) or at least 1m, got: %s", cfg.RiskAnalysisInterval))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.FeeBase < 0 {
		errors = append(errors, fmt.Sprintf("FeeBase cannot be negative, got: %d", cfg.FeeBase))
	}
	if cfg.FeePerHour < 0 {
		errors = append(errors, fmt.Sprintf("FeePerHour cannot be negative, got: %d", cfg.FeePerHour))
	}

	if cfg.KafkaEnabled && strings.TrimSpace(cfg.KafkaLifecycleTopic) == "" {
		errors = append(errors, "KafkaLifecycleTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"gate_signing_secret_set", cfg.GateSigningSecret != "",
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_db", cfg.RedisDB,
		"occupancy_cache_ttl", cfg.OccupancyCacheTTL,
		"booking_hold_window", cfg.BookingHoldWindow,
		"profile_receipt_validity", cfg.ProfileReceiptValidity,
		"ticket_sweep_interval", cfg.TicketSweepInterval,
		"risk_analysis_interval", cfg.RiskAnalysisInterval,
		"fee_base", cfg.FeeBase,
		"fee_per_hour", cfg.FeePerHour,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_lifecycle_topic", cfg.KafkaLifecycleTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
