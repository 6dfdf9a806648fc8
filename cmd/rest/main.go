package main

import (
	"context"
	"log"

	"ai-support-be/internal/bootstrap"
	"ai-support-be/internal/config"
	"ai-support-be/internal/server"
)

func main() {
	cfg := config.Load()

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer container.Logger.Sync()
	defer container.PubSub.Close()
	if container.NotifyPublisher != nil {
		defer container.NotifyPublisher.Close()
	}

	if err := container.EscalationConsumer.Consume(context.Background()); err != nil {
		log.Fatalf("start escalation consumer: %v", err)
	}

	srv := server.New(cfg, container)
	if err := srv.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
