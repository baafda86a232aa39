package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Enabled {
		t.Error("Kafka should be disabled by default")
	}
	if cfg.TopicBookingEvents != DefaultTopicBookingEvents || cfg.GroupID != DefaultGroupID {
		t.Errorf("unexpected topics: %+v", cfg)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092 , kafka-2:9092 ")
	t.Setenv(EnvKafkaTopicRatingRecompute, "ratings")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Enabled {
		t.Error("Enabled should be true")
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.TopicRatingRecompute != "ratings" {
		t.Errorf("TopicRatingRecompute = %q", cfg.TopicRatingRecompute)
	}
	if cfg.ConsumerRetryBackoff != 2*time.Second {
		t.Errorf("ConsumerRetryBackoff = %s", cfg.ConsumerRetryBackoff)
	}
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "ProducerCompression") {
		t.Fatalf("expected compression error, got %v", err)
	}
}
