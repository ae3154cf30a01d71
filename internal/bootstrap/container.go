package bootstrap

import (
	"context"
	"log"

	"ai-notetaking-session/internal/config"
	"ai-notetaking-session/internal/controller"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/repository/cache"
	"ai-notetaking-session/internal/repository/unitofwork"
	"ai-notetaking-session/internal/service"
	pktNats "ai-notetaking-session/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	DocumentController controller.IDocumentController
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Infrastructure
	// NATS is optional: the store runs fine without the event bus.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis, also optional. A dead cache degrades reads to Postgres.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}
	documentCache := cache.NewDocumentCache(rdb, sysLogger)

	// 3. Services
	documentService := service.NewDocumentService(
		uowFactory,
		documentCache,
		natsPub,
		sysLogger,
		cfg.Session.MaxCheckpointsPerDocument,
	)

	// 4. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
	}
}
