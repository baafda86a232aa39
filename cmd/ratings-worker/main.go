package main

import (
	bookingsrepo "slotbook/internal/bookings/repository"
	providersrepo "slotbook/internal/providers/repository"
	"slotbook/internal/ratings"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "ratings-worker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	aggregator := ratings.NewAggregator(
		bookingsrepo.NewMongoBookingRepository(cfg),
		providersrepo.NewMongoProviderRepository(cfg),
		cfg.Log,
	)

	// A separate group so recompute requests are not shared with the notifier.
	kafkaCfg.GroupID += "-ratings"
	consumer, err := kafka.NewConsumer(kafkaCfg, kafkaCfg.TopicRatingRecompute, kafkaCfg.TopicDLQ, ratings.NewRecomputeHandler(aggregator, cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Starting ratings worker", "topic", kafkaCfg.TopicRatingRecompute, "group_id", kafkaCfg.GroupID)
	app.RunWorkers(cfg, consumer)
}
