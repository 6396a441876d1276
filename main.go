package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"postforge/api/router"
	"postforge/auth"
	"postforge/cache"
	"postforge/config"
	"postforge/db"
	"postforge/eventbus"
	"postforge/genclient"
	"postforge/orchestrator"
	"postforge/quota"
	"postforge/repositories"
	"postforge/services"
	"postforge/storage"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	gemini, err := genclient.NewGemini(ctx, cfg.GeminiApiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("failed to initialize Gemini client:", err)
	}

	blobs, err := storage.NewS3BlobStore(cfg.Blob)
	if err != nil {
		log.Fatal("failed to initialize blob store:", err)
	}

	var bus eventbus.Publisher
	if cfg.Kafka.Brokers != "" {
		kafkaBus, err := eventbus.NewKafkaPublisher(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatal("failed to initialize kafka publisher:", err)
		}
		bus = kafkaBus
	} else {
		config.Logger.Warn("no kafka brokers configured, audit events stay in memory")
		bus = eventbus.NewMemoryPublisher()
	}
	defer bus.Close()

	records := repositories.NewContentRecordRepository(db.Database())
	quotaStore := repositories.NewUserQuotaRepository(db.Database())
	guard := quota.NewGuard(quotaStore, cfg.Quota.MaxStorageBytes)
	resultCache := cache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)

	orch := orchestrator.New(orchestrator.Deps{
		Generator:  gemini,
		Translator: gemini,
		Blobs:      blobs,
		Records:    records,
		Quota:      guard,
		Bus:        bus,
		AuditTopic: cfg.Kafka.AuditTopic,
		Deadline:   time.Duration(cfg.Pipeline.DeadlineSeconds) * time.Second,
	})

	contentSvc := services.NewContentService(orch, records, blobs, guard, resultCache, bus, cfg.Kafka.AuditTopic)

	jwtMgr, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	r := router.New(jwtMgr, contentSvc)
	handler := cors.Default().Handler(r)

	config.Logger.Infof("listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
