package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cloudstore/internal/config"
	"cloudstore/internal/events"
	jwtsvc "cloudstore/internal/pkg/jwt"
	"cloudstore/internal/storage"
)

// NewStore picks the blob store named by STORAGE_DRIVER.
func NewStore(ctx context.Context, cfg *config.Config, tokens *jwtsvc.Service) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.StorageDriverDisk:
		return storage.NewDiskStore(cfg.StorageDir, cfg.PublicBaseURL, tokens)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op one otherwise.
func NewPublisher(cfg *config.Config, log zerolog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info().Msg("KAFKA_BROKERS not set, lifecycle events are disabled")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
}
