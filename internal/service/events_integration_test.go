//go:build integration
// +build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vidshelf/media-catalog-go/internal/config"
	"github.com/vidshelf/media-catalog-go/internal/models"
)

func setupTestRabbitMQ(t *testing.T) (*config.RabbitMQConfig, func()) {
	ctx := context.Background()

	rabbitmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3.13-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start rabbitmq container: %v", err)
	}

	host, err := rabbitmqContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get host: %v", err)
	}

	port, err := rabbitmqContainer.MappedPort(ctx, "5672/tcp")
	if err != nil {
		t.Fatalf("Failed to get port: %v", err)
	}

	cfg := &config.RabbitMQConfig{
		Host:       host,
		Port:       port.Int(),
		User:       "guest",
		Password:   "guest",
		Exchange:   "test.catalog.events",
		Queue:      "test.catalog.events.videos",
		RoutingKey: "video.changed",
	}

	cleanup := func() {
		if err := rabbitmqContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return cfg, cleanup
}

func testCatalogEvent(eventType models.EventType) *models.CatalogEvent {
	return &models.CatalogEvent{
		ID:         uuid.New(),
		Type:       eventType,
		VideoID:    uuid.New(),
		CategoryID: uuid.New(),
		Title:      "Some Video",
		IsExternal: true,
		OccurredAt: time.Now(),
	}
}

func TestNewMessagePublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	mp, err := NewMessagePublisher(cfg)
	if err != nil {
		t.Fatalf("NewMessagePublisher() error = %v", err)
	}
	defer mp.Close()

	if !mp.IsHealthy() {
		t.Error("IsHealthy() = false, want true after connect")
	}
}

func TestMessagePublisher_PublishEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	mp, err := NewMessagePublisher(cfg)
	if err != nil {
		t.Fatalf("NewMessagePublisher() error = %v", err)
	}
	defer mp.Close()

	ctx := context.Background()
	if err := mp.PublishEvent(ctx, testCatalogEvent(models.EventVideoCreated)); err != nil {
		t.Errorf("PublishEvent() error = %v", err)
	}
}

func TestMessagePublisher_SequentialPublishes(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	mp, err := NewMessagePublisher(cfg)
	if err != nil {
		t.Fatalf("NewMessagePublisher() error = %v", err)
	}
	defer mp.Close()

	// Every publish must receive its confirmation; a stale listener left
	// behind by an earlier publish would stall the broker's confirm
	// delivery and time out here.
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := mp.PublishEvent(ctx, testCatalogEvent(models.EventVideoCreated)); err != nil {
			t.Fatalf("PublishEvent() #%d error = %v", i+1, err)
		}
	}
}

func TestMessagePublisher_Close(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	mp, err := NewMessagePublisher(cfg)
	if err != nil {
		t.Fatalf("NewMessagePublisher() error = %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if mp.IsHealthy() {
		t.Error("IsHealthy() after Close() = true, want false")
	}

	// Publishing on a closed channel must fail, not panic.
	if err := mp.PublishEvent(context.Background(), testCatalogEvent(models.EventVideoDeleted)); err == nil {
		t.Error("PublishEvent() after Close() error = nil, want error")
	}
}
