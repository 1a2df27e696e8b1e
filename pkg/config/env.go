package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvGateSigningSecret = "GATE_SIGNING_SECRET"
	EnvJWTSecret         = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisAddr         = "REDIS_ADDR"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvRedisDB           = "REDIS_DB"
	EnvOccupancyCacheTTL = "OCCUPANCY_CACHE_TTL"

	EnvBookingHoldWindow      = "BOOKING_HOLD_WINDOW"
	EnvProfileReceiptValidity = "PROFILE_RECEIPT_VALIDITY"
	EnvTicketSweepInterval    = "TICKET_SWEEP_INTERVAL"
	EnvRiskAnalysisInterval   = "RISK_ANALYSIS_INTERVAL"

	EnvFeeBase    = "FEE_BASE"
	EnvFeePerHour = "FEE_PER_HOUR"

	EnvKafkaEnabled        = "KAFKA_ENABLED"
	EnvKafkaLifecycleTopic = "KAFKA_LIFECYCLE_TOPIC"
	EnvKafkaDLQTopic       = "KAFKA_DLQ_TOPIC"
)
