// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command gateway starts the AleutianGateway chat HTTP server.
//
// This is the main entry point for the containerized gateway service.
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - GATEWAY_PORT: HTTP server port (default: 12310)
//   - VALID_MODEL_IDS: comma-separated model allow-list
//   - BEDROCK_ENDPOINT: model runtime endpoint (default: derived from AWS_REGION)
//   - KNOWLEDGE_BASE_URL: Weaviate knowledge base URL (optional)
//   - HISTORY_DB_PATH: chat-history store directory (optional)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: aleutian-otel-collector:4317)
//   - GATEWAY_LOG_DIR: directory for JSON log files (optional)
//
// # Usage
//
//	# Build
//	go build -o gateway ./cmd/gateway
//
//	# Run
//	./gateway
//
//	# Or via container
//	podman-compose up gateway
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/AleutianAI/AleutianGateway/pkg/logging"
	"github.com/AleutianAI/AleutianGateway/services/gateway"
)

func main() {
	// Setup structured logging
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  os.Getenv("GATEWAY_LOG_DIR"),
		Service: "gateway",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cfg := gateway.ConfigFromEnv()

	slog.Info("Starting gateway",
		"port", cfg.Port,
		"knowledge_base_url", cfg.KnowledgeBaseURL,
		"history_path", cfg.HistoryPath,
	)

	svc, err := gateway.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Gateway error: %v", err)
	}
}
