package main

import (
	"context"
	"log"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/wayfinderhq/wayfinder/internal/adapters/amap"
	natsadapter "github.com/wayfinderhq/wayfinder/internal/adapters/nats"
	"github.com/wayfinderhq/wayfinder/internal/adapters/postgres"
	"github.com/wayfinderhq/wayfinder/internal/adapters/valkey"
	"github.com/wayfinderhq/wayfinder/internal/core/usecases"
	"github.com/wayfinderhq/wayfinder/internal/pkg/config"
	"github.com/wayfinderhq/wayfinder/internal/pkg/logging"
	"github.com/wayfinderhq/wayfinder/internal/workflows"
)

func main() {
	cfg, err := config.Load("wayfinder-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup("info", "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	state, err := valkey.New(cfg.Valkey.Addr, time.Duration(cfg.Valkey.StateTTL)*time.Second)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer state.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	amapClient := amap.New(cfg.AMap.Key, cfg.AMap.BaseURL,
		time.Duration(cfg.AMap.TimeoutSeconds)*time.Second)

	resolver := usecases.NewResolverService(amapClient, amapClient,
		time.Duration(cfg.AMap.StageTimeoutSeconds)*time.Second)
	conversations := usecases.NewConversationService(resolver,
		postgres.NewSessionRepo(db), postgres.NewMessageRepo(db), state, pub)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ResolutionWorkflow)
	w.RegisterActivity(&workflows.ResolutionActivities{
		Geocoder:      amapClient,
		Routes:        amapClient,
		Conversations: conversations,
	})

	log.Println("resolution worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
