package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "parkproof"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB, gate payloads are tiny

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB           = 0
	DefaultOccupancyCacheTTL = 30 * time.Second

	DefaultBookingHoldWindow      = 10 * time.Minute
	DefaultProfileReceiptValidity = 24 * time.Hour
	DefaultTicketSweepInterval    = 0 // disabled, expiry is discovered lazily
	DefaultRiskAnalysisInterval   = time.Hour

	DefaultFeeBase    = 20
	DefaultFeePerHour = 10

	DefaultKafkaEnabled        = false
	DefaultKafkaLifecycleTopic = "parking.lifecycle"

	DefaultPaginationLimit = 100
)
