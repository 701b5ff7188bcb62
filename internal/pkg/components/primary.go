// Package components wires this service's dependency graph, generalized
// from the teacher's singleton Container (internal/pkg/components/components.go)
// into two role-specific containers — PrimaryContainer and BackupContainer —
// since SPEC_FULL.md §2 runs two different binaries from the same module
// rather than one process that is always the same shape.
package components

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bank-api/internal/api/handlers"
	"bank-api/internal/api/routes"
	"bank-api/internal/config"
	"bank-api/internal/events"
	eventskafka "bank-api/internal/events/kafka"
	"bank-api/internal/failover"
	"bank-api/internal/orchestrator"
	"bank-api/internal/pkg/logging"
	"bank-api/internal/replication/rpc"
	"bank-api/internal/wallet"
)

// PrimaryContainer holds every component cmd/primary needs: the wallet
// engine, the replication client, the failover manager, the orchestrator,
// the event publisher, and the HTTP server.
type PrimaryContainer struct {
	Config       *config.Config
	Engine       *wallet.Engine
	Replica      *rpc.Client
	Failover     *failover.Manager
	Orchestrator *orchestrator.Orchestrator
	Publisher    events.Publisher
	Router       *gin.Engine
	Server       *http.Server

	shutdownOnce sync.Once
}

// NewPrimary builds and wires every component in dependency order
// (SPEC_FULL.md §2: Wallet Engine -> Replication Client/Failover Manager ->
// Primary Orchestrator -> HTTP Edge) but does not start anything yet.
func NewPrimary(cfg *config.Config) (*PrimaryContainer, error) {
	logging.Init(cfg)

	engine, err := wallet.New(
		filepath.Join(cfg.WAL.StateDir, "primary", "ledger.log"),
		filepath.Join(cfg.WAL.StateDir, "primary", "snapshot.json"),
	)
	if err != nil {
		return nil, fmt.Errorf("components: init primary engine: %w", err)
	}

	replica := rpc.NewClient(cfg.Replication.BackupRPCAddr, cfg.Replication.ReplicateTimeout, cfg.Replication.PingTimeout)
	fm := failover.New(replica, cfg.Failover.HealthInterval)

	publisher := newEventPublisher(cfg)

	orch := orchestrator.New(engine, replica, fm, publisher)

	c := &PrimaryContainer{
		Config:       cfg,
		Engine:       engine,
		Replica:      replica,
		Failover:     fm,
		Orchestrator: orch,
		Publisher:    publisher,
	}

	if err := c.initServer(); err != nil {
		return nil, err
	}
	return c, nil
}

func newEventPublisher(cfg *config.Config) events.Publisher {
	if !cfg.Kafka.Enabled {
		logging.Info("kafka disabled, using no-op event publisher", nil)
		return events.NoOpPublisher{}
	}

	producer, err := eventskafka.NewProducer(&eventskafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		ClientID:     cfg.Kafka.ClientID,
		MaxRetries:   5,
		RetryBackoff: 100 * time.Millisecond,
	})
	if err != nil {
		logging.Warn("failed to initialize kafka, using no-op event publisher", map[string]interface{}{
			"error": err.Error(),
		})
		return events.NoOpPublisher{}
	}
	return producer
}

// GetOrchestrator implements handlers.Dependencies.
func (c *PrimaryContainer) GetOrchestrator() *orchestrator.Orchestrator {
	return c.Orchestrator
}

func (c *PrimaryContainer) initServer() error {
	if c.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	routes.RegisterRoutes(router, c)
	c.Router = router

	c.Server = &http.Server{
		Addr:           ":" + c.Config.Server.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return nil
}

// Start recovers the engine, starts the failover probe loop, and serves HTTP
// until an interrupt/term signal triggers graceful shutdown.
func (c *PrimaryContainer) Start() error {
	if err := c.Engine.Recover(); err != nil {
		return fmt.Errorf("components: primary recovery failed: %w", err)
	}
	handlers.MarkReady()
	logging.Info("primary engine recovered", nil)

	go c.Failover.Run()

	go func() {
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("http server failed", err, nil)
			os.Exit(1)
		}
	}()

	c.waitForShutdown()
	return nil
}

func (c *PrimaryContainer) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down primary...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		logging.Error("primary forced to shutdown", err, nil)
	}
	logging.Info("primary shutdown complete", nil)
}

// Shutdown stops the HTTP server, the failover probe loop, the event
// publisher, and closes the engine's WAL file handle, in that order.
func (c *PrimaryContainer) Shutdown(ctx context.Context) error {
	var err error

	c.shutdownOnce.Do(func() {
		if shutdownErr := c.Server.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("http server shutdown: %w", shutdownErr)
		}
		c.Failover.Stop()
		if pubErr := c.Publisher.Close(); pubErr != nil {
			logging.Error("failed to close event publisher", pubErr, nil)
		}
		if engErr := c.Engine.Close(); engErr != nil && err == nil {
			err = fmt.Errorf("engine close: %w", engErr)
		}
	})
	return err
}
