package components

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bank-api/internal/config"
	"bank-api/internal/pkg/logging"
	"bank-api/internal/replication/rpc"
	"bank-api/internal/wallet"
)

// BackupContainer holds only what the backup process needs: its own wallet
// engine and the replication server that drives it. The backup never mounts
// an HTTP router (SPEC_FULL.md §4.3).
type BackupContainer struct {
	Config *config.Config
	Engine *wallet.Engine
	Server *rpc.Server
}

func NewBackup(cfg *config.Config) (*BackupContainer, error) {
	logging.Init(cfg)

	engine, err := wallet.New(
		filepath.Join(cfg.WAL.StateDir, "backup", "ledger.log"),
		filepath.Join(cfg.WAL.StateDir, "backup", "snapshot.json"),
	)
	if err != nil {
		return nil, fmt.Errorf("components: init backup engine: %w", err)
	}

	return &BackupContainer{
		Config: cfg,
		Engine: engine,
		Server: rpc.NewServer(engine),
	}, nil
}

// Start recovers the engine and serves the replication RPC listener until an
// interrupt/term signal triggers shutdown.
func (c *BackupContainer) Start() error {
	if err := c.Engine.Recover(); err != nil {
		return fmt.Errorf("components: backup recovery failed: %w", err)
	}
	logging.Info("backup engine recovered", nil)

	addr := ":" + c.Config.Replication.BackupRPCPort
	go func() {
		if err := c.Server.Serve(addr); err != nil {
			logging.Error("replication server failed", err, nil)
			os.Exit(1)
		}
	}()

	c.waitForShutdown()
	return nil
}

func (c *BackupContainer) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down backup...", nil)
	if err := c.Server.Close(); err != nil {
		logging.Error("replication server close failed", err, nil)
	}
	if err := c.Engine.Close(); err != nil {
		logging.Error("backup engine close failed", err, nil)
	}
	logging.Info("backup shutdown complete", nil)
}
