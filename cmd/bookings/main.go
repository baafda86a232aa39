package main

import (
	"slotbook/internal/bookings/handler"
	"slotbook/internal/bookings/locker"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/service"
	"slotbook/internal/bookings/validator"
	"slotbook/internal/notifications"
	providersrepo "slotbook/internal/providers/repository"
	"slotbook/internal/ratings"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	providerRepo := providersrepo.NewMongoProviderRepository(cfg)

	deps := service.Dependencies{
		Repo:      bookingRepo,
		Providers: providerRepo,
		Locker:    locker.New(cfg),
		Validator: validator.NewBookingValidator(cfg.Log),
		Ratings:   ratings.NewAggregator(bookingRepo, providerRepo, cfg.Log),
	}
	wireKafka(cfg, serverApp, &deps)

	bookingService := service.NewBookingService(deps, cfg)
	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// wireKafka attaches the event notifier and the rating retry publisher when
// Kafka is enabled. Without it events are dropped and failed recomputes are
// only logged.
func wireKafka(cfg *config.Config, serverApp *app.Application, deps *service.Dependencies) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return
	}

	metrics := kafka_middleware.NewMetrics()
	newProducer := func(topic string) *kafka.Producer {
		p, err := kafka.NewProducer(kafkaCfg, topic, kafkaCfg.TopicDLQ, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			p.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			p.Use(metrics.ProducerMiddleware())
		}
		return p
	}

	events := newProducer(kafkaCfg.TopicBookingEvents)
	recompute := newProducer(kafkaCfg.TopicRatingRecompute)

	notifier := notifications.NewKafkaNotifier(events, ServiceName, cfg.NotifyTimeout, cfg.Log)
	deps.Notifier = notifier
	deps.Retry = ratings.NewRetryPublisher(recompute, ServiceName)

	serverApp.OnShutdown(func() {
		notifier.Wait()
		for _, p := range []*kafka.Producer{events, recompute} {
			if err := p.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "topic", p.Topic(), "error", err)
			}
		}
		cfg.Log.Info("Kafka producer metrics", metrics.Snapshot().LogValues()...)
	})
}
