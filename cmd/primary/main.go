package main

import (
	"log"

	"bank-api/internal/config"
	"bank-api/internal/pkg/components"
	"bank-api/internal/pkg/logging"
)

func main() {
	cfg := config.Load()

	container, err := components.NewPrimary(cfg)
	if err != nil {
		log.Fatalf("failed to initialize primary: %v", err)
	}

	logging.Info("primary initialized", map[string]interface{}{
		"environment":     cfg.Environment,
		"http_port":       cfg.Server.Port,
		"backup_rpc_addr": cfg.Replication.BackupRPCAddr,
	})


	if err := container.Start(); err != nil {
		log.Fatalf("failed to start primary: %v", err)
	}
}
