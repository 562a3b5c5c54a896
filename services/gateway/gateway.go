// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gateway provides the chat gateway service.
//
// This package contains the main Service type that coordinates all
// components of the gateway: HTTP routing, the model-invocation client, the
// optional knowledge-base retriever, the chat-history store, and the
// observability infrastructure.
//
// # Usage
//
//	cfg := gateway.ConfigFromEnv()
//	svc, err := gateway.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianGateway/services/gateway/history"
	"github.com/AleutianAI/AleutianGateway/services/gateway/observability"
	"github.com/AleutianAI/AleutianGateway/services/gateway/retrieval"
	"github.com/AleutianAI/AleutianGateway/services/gateway/routes"
	"github.com/AleutianAI/AleutianGateway/services/gateway/services"
	"github.com/AleutianAI/AleutianGateway/services/llm"
	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultAllowedModels is the model allow-list used when none is configured.
var DefaultAllowedModels = []string{
	"anthropic.claude-3-sonnet-20240229-v1:0",
	"anthropic.claude-3-haiku-20240307-v1:0",
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds gateway configuration options. All fields have defaults
// applied by New(); a zero Config starts a minimal (non-retrieval) gateway.
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// AllowedModels is the model identifier allow-list.
	// Default: DefaultAllowedModels
	AllowedModels []string

	// KnowledgeBaseURL is the Weaviate knowledge base URL. If empty, the
	// retrieval-augmented path is disabled and prompts are built from the
	// question and custom instructions alone.
	KnowledgeBaseURL string

	// HistoryPath is the directory for the embedded chat-history store.
	// If empty, history persistence is disabled.
	HistoryPath string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "aleutian-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics enables the Prometheus metrics endpoint registry.
	// Default: true (via ConfigFromEnv)
	EnableMetrics bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses the GIN_MODE env var or "debug".
	GinMode string
}

// =============================================================================
// Service
// =============================================================================

// Service is the runnable gateway.
//
// # Thread Safety
//
// Thread-safe after construction; all fields are read-only once New returns.
// Run blocks and should only be called once per instance.
type Service struct {
	config        Config
	router        *gin.Engine
	modelClient   llm.ModelClient
	historyStore  history.Store
	tracerCleanup func(context.Context)
}

// New initializes all gateway components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing and Prometheus metrics
//  3. Creates the Bedrock model client
//  4. Creates the Weaviate retriever when a knowledge base is configured
//  5. Opens the chat-history store when a path is configured
//  6. Sets up HTTP routes
func New(cfg Config) (*Service, error) {
	s := &Service{config: applyConfigDefaults(cfg)}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	modelClient, err := llm.NewBedrockClient()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}
	s.modelClient = modelClient

	retriever, err := s.initRetriever()
	if err != nil {
		// Not fatal - the gateway still answers without retrieval context.
		slog.Warn("Knowledge base initialization failed, running without retrieval augmentation",
			"error", err)
		retriever = nil
	}

	if s.config.HistoryPath != "" {
		store, err := history.Open(history.DefaultConfig(s.config.HistoryPath))
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		s.historyStore = store
	} else {
		slog.Info("HISTORY_DB_PATH not set, chat history persistence disabled")
	}

	validator := datatypes.NewRequestValidator(s.config.AllowedModels)
	chatService := services.NewChatService(validator, s.modelClient, retriever, s.historyStore)

	s.initRouter(chatService)

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown or error.
func (s *Service) Run() error {
	defer s.cleanup()
	slog.Info("Starting the gateway server", "port", s.config.Port)
	return s.router.Run(fmt.Sprintf(":%d", s.config.Port))
}

// Router exposes the configured engine for tests.
func (s *Service) Router() *gin.Engine {
	return s.router
}

// cleanup releases resources acquired during New.
func (s *Service) cleanup() {
	if s.historyStore != nil {
		if err := s.historyStore.Close(); err != nil {
			slog.Error("Failed to close history store", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Initialization Helpers
// =============================================================================

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if len(cfg.AllowedModels) == 0 {
		cfg.AllowedModels = DefaultAllowedModels
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "aleutian-otel-collector:4317"
	}
	return cfg
}

func (s *Service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("gateway-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// initRetriever builds the Weaviate retriever when a knowledge base URL is
// configured and valid. Returns (nil, nil) in lightweight mode.
func (s *Service) initRetriever() (retrieval.Retriever, error) {
	kbURL := strings.Trim(s.config.KnowledgeBaseURL, "\"' ")
	if kbURL == "" {
		slog.Info("KNOWLEDGE_BASE_URL not set. Running in lightweight mode (direct chat only).")
		return nil, nil
	}

	parsedURL, err := url.Parse(kbURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid knowledge base URL %q: %v", kbURL, err)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	slog.Info("Retrieval augmentation enabled", "knowledgeBase", parsedURL.Host)
	return retrieval.NewWeaviateRetriever(client, retrieval.DefaultDocumentClass), nil
}

func (s *Service) initRouter(chatService *services.ChatService) {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("gateway-service"))

	routes.SetupRoutes(router, chatService, s.historyStore)
	s.router = router
}
