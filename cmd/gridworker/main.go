package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/etxarri/terragrid/internal/adapters/landmask"
	natsadapter "github.com/etxarri/terragrid/internal/adapters/nats"
	"github.com/etxarri/terragrid/internal/adapters/postgres"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/core/usecases"
	"github.com/etxarri/terragrid/internal/pkg/config"
	"github.com/etxarri/terragrid/internal/workflows"
)

func main() {
	cfg, err := config.Load("terragrid-gridworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		log.Printf("nats unavailable, rebuild events will not be announced: %v", err)
	} else {
		events = pub
		defer pub.Close()
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.GridRebuildWorkflow)
	w.RegisterActivity(&workflows.GridActivities{
		Grid:   usecases.NewGridService(landmask.New(), nil),
		Tiles:  postgres.NewTileRepo(db),
		Events: events,
	})

	log.Println("grid rebuild worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
