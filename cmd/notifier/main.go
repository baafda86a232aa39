package main

import (
	"slotbook/internal/notifications"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	handler := notifications.NewEventHandler(notifications.NewLogSender(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, kafkaCfg.TopicBookingEvents, kafkaCfg.TopicDLQ, handler, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	cfg.Log.Info("Starting notifier", "topic", kafkaCfg.TopicBookingEvents, "group_id", kafkaCfg.GroupID)
	app.RunWorkers(cfg, consumer)
	cfg.Log.Info("Notifier consumer metrics", metrics.Snapshot().LogValues()...)
}
