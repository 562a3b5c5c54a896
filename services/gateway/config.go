// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gateway

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ConfigFromEnv builds a Config from environment variables:
//
//	GATEWAY_PORT                 HTTP port (default 12310)
//	VALID_MODEL_IDS              comma-separated model allow-list
//	KNOWLEDGE_BASE_URL           Weaviate knowledge base URL (optional)
//	HISTORY_DB_PATH              chat-history store directory (optional)
//	OTEL_EXPORTER_OTLP_ENDPOINT  collector endpoint
//	GATEWAY_DISABLE_METRICS      "true" disables the metrics registry
func ConfigFromEnv() Config {
	cfg := Config{
		KnowledgeBaseURL: os.Getenv("KNOWLEDGE_BASE_URL"),
		HistoryPath:      os.Getenv("HISTORY_DB_PATH"),
		OTelEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		EnableMetrics:    !strings.EqualFold(os.Getenv("GATEWAY_DISABLE_METRICS"), "true"),
	}

	if portStr := os.Getenv("GATEWAY_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			slog.Warn("Ignoring invalid GATEWAY_PORT", "value", portStr)
		} else {
			cfg.Port = port
		}
	}

	if ids := os.Getenv("VALID_MODEL_IDS"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.AllowedModels = append(cfg.AllowedModels, id)
			}
		}
	}

	return cfg
}
