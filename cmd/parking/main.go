package main

import (
	bookingshandler "parkproof/internal/bookings/handler"
	bookingsservice "parkproof/internal/bookings/service"
	bookingsvalidator "parkproof/internal/bookings/validator"
	"parkproof/internal/events"
	gatehandler "parkproof/internal/gate/handler"
	gateservice "parkproof/internal/gate/service"
	gatevalidator "parkproof/internal/gate/validator"
	lotshandler "parkproof/internal/lots/handler"
	lotsrepo "parkproof/internal/lots/repository"
	lotsservice "parkproof/internal/lots/service"
	lotsvalidator "parkproof/internal/lots/validator"
	riskhandler "parkproof/internal/risk/handler"
	riskrepo "parkproof/internal/risk/repository"
	riskservice "parkproof/internal/risk/service"
	sessionsrepo "parkproof/internal/sessions/repository"
	sessionsservice "parkproof/internal/sessions/service"
	ticketshandler "parkproof/internal/tickets/handler"
	ticketsrepo "parkproof/internal/tickets/repository"
	ticketsservice "parkproof/internal/tickets/service"
	usersrepo "parkproof/internal/users/repository"
	vehicleshandler "parkproof/internal/vehicles/handler"
	vehiclesrepo "parkproof/internal/vehicles/repository"
	vehiclesservice "parkproof/internal/vehicles/service"
	vehiclesvalidator "parkproof/internal/vehicles/validator"
	"parkproof/pkg/app"
	"parkproof/pkg/auth"
	"parkproof/pkg/cache"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	"parkproof/pkg/contracts"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/kafka"
	kafka_config "parkproof/pkg/kafka/config"
	kafkamiddleware "parkproof/pkg/kafka/middleware"
)

const ServiceName = "parking"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Parking service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg)
	serverApp.OnShutdown(publisher.Close)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	handlers, jobs := initHandlers(cfg, publisher, verifier)

	if cfg.TicketSweepInterval > 0 {
		sweeper := ticketsservice.NewSweeper(jobs.tickets, cfg.TicketSweepInterval, cfg.Log)
		sweeper.Start()
		serverApp.AddWorker(sweeper)
	}
	if cfg.RiskAnalysisInterval > 0 {
		scheduler := riskservice.NewScheduler(jobs.risk, cfg.RiskAnalysisInterval, cfg.Log.Component("risk"))
		scheduler.Start()
		serverApp.AddWorker(scheduler)
	} else {
		cfg.Log.Info("Risk analysis disabled")
	}

	serverApp.SetApp(verifier, []string{gatehandler.EntryPath, gatehandler.ExitPath}, handlers...)
	serverApp.Run()
}

// initPublisher returns the Kafka lifecycle publisher, or a no-op one when
// Kafka is disabled. A broken Kafka setup is fatal only when it was asked for.
func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, lifecycle events are not published")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaLifecycleTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware(kafkamiddleware.NewMetrics()))
	}

	cfg.Log.Info("Kafka lifecycle publisher initialized", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

// backgroundJobs are the services driven by workers rather than requests.
type backgroundJobs struct {
	tickets ticketsservice.TicketService
	risk    *riskservice.Analyzer
}

func initHandlers(cfg *config.Config, publisher events.Publisher, verifier *auth.Verifier) ([]contracts.Handler, backgroundJobs) {
	clk := clock.NewSystem()

	ticketRepo := ticketsrepo.NewMongoTicketRepository(cfg)
	sessionRepo := sessionsrepo.NewMongoSessionRepository(cfg)
	lotRepo := lotsrepo.NewMongoLotRepository(cfg)

	var statsCache cache.StatsCache = cache.NoopStatsCache{}
	if cfg.Client.Redis != nil {
		statsCache = cache.NewStatsCache(cfg.Client.Redis, cfg.OccupancyCacheTTL)
	}

	tickets := ticketsservice.NewTicketService(ticketRepo, clk, publisher, cfg)
	sessions := sessionsservice.NewSessionService(sessionRepo, clk, publisher, cfg)
	lots := lotsservice.NewLotService(
		lotRepo,
		sessionRepo,
		ticketRepo,
		statsCache,
		lotsvalidator.NewLotValidator(),
		clk,
		cfg,
	)
	gate := gateservice.NewGateService(
		tickets,
		sessions,
		lots,
		usersrepo.NewMongoUserRepository(cfg),
		mongotx.NewTransactionManager(cfg.Client.Mongo),
		publisher,
		gatevalidator.NewRequestValidator(),
		clk,
		cfg,
	)
	bookings := bookingsservice.NewBookingService(lots, tickets, publisher, bookingsvalidator.NewBookingValidator(), cfg)
	vehicles := vehiclesservice.NewVehicleService(
		vehiclesrepo.NewMongoVehicleRepository(cfg),
		vehiclesvalidator.NewVehicleValidator(),
		clk,
		cfg,
	)

	reportRepo := riskrepo.NewMongoReportRepository(cfg)
	scoreRepo := riskrepo.NewMongoScoreRepository(cfg)
	risk := riskservice.NewRiskService(reportRepo, scoreRepo, lots, clk, cfg)
	analyzer := riskservice.NewAnalyzer(lotRepo, sessionRepo, ticketRepo, reportRepo, scoreRepo, clk, cfg)

	cfg.Log.Info("Parking services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		gatehandler.NewGateHandler(gate, cfg.Log),
		ticketshandler.NewTicketHandler(tickets, cfg.Log),
		bookingshandler.NewBookingHandler(bookings, cfg.Log),
		lotshandler.NewLotHandler(lots, sessions, verifier, cfg.Log),
		vehicleshandler.NewVehicleHandler(vehicles, verifier, cfg.Log),
		riskhandler.NewRiskHandler(risk, verifier, cfg.Log),
	}, backgroundJobs{tickets: tickets, risk: analyzer}
}
