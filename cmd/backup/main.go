package main

import (
	"log"

	"bank-api/internal/config"
	"bank-api/internal/pkg/components"
	"bank-api/internal/pkg/logging"
)

func main() {
	cfg := config.Load()

	container, err := components.NewBackup(cfg)
	if err != nil {
		log.Fatalf("failed to initialize backup: %v", err)
	}

	logging.Info("backup initialized", map[string]interface{}{
		"environment": cfg.Environment,
		"rpc_port":    cfg.Replication.BackupRPCPort,
		"state_dir":   cfg.WAL.StateDir,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start backup: %v", err)
	}
}
