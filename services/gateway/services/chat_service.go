// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services provides business logic services for the gateway.
//
// This package contains service structs that encapsulate business logic,
// separating it from HTTP handlers. Services are responsible for:
//   - Orchestrating calls to external collaborators (model backend,
//     knowledge base, history store)
//   - Applying business rules and validation
//   - Error handling and classification
//
// Services are designed to be:
//   - Testable: Dependencies are injected via constructors
//   - Traceable: All methods accept context for distributed tracing
package services

import (
	"context"
	"log/slog"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianGateway/services/gateway/history"
	"github.com/AleutianAI/AleutianGateway/services/gateway/prompt"
	"github.com/AleutianAI/AleutianGateway/services/gateway/retrieval"
	"github.com/AleutianAI/AleutianGateway/services/gateway/topics"
	"github.com/AleutianAI/AleutianGateway/services/llm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// chatTracer is the OpenTelemetry tracer for ChatService operations.
var chatTracer = otel.Tracer("aleutian.gateway.services.chat")

// DefaultTopDocuments is the number of knowledge-base snippets folded into
// the prompt on the retrieval-augmented path.
const DefaultTopDocuments = 5

// =============================================================================
// ChatService
// =============================================================================

// ChatService handles a chat request end-to-end. It sequences:
//   - Request validation (with defaults applied)
//   - Topic extraction and document retrieval (retrieval-augmented path only)
//   - Prompt construction
//   - Model invocation and content-block assembly
//   - Best-effort history persistence
//
// The service is stateless; each call is independent and safe to run
// concurrently. Collaborators are injected at construction so tests can
// substitute doubles.
//
// Usage:
//
//	service := NewChatService(validator, modelClient, retriever, historyStore)
//	resp, sessionID, err := service.Handle(ctx, rawBody)
type ChatService struct {
	validator    *datatypes.RequestValidator
	model        llm.ModelClient
	extractor    *topics.Extractor
	retriever    retrieval.Retriever
	history      history.Store
	topDocuments int
}

// NewChatService creates a ChatService with the provided collaborators.
//
// Parameters:
//   - validator: Parses and validates raw request bodies. Must not be nil.
//   - model: Client for the model-invocation backend. Must not be nil.
//   - retriever: Knowledge-base retriever. Nil disables the
//     retrieval-augmented path; the prompt is then built from the question
//     and custom instructions alone.
//   - historyStore: Durable chat history. Nil disables persistence.
func NewChatService(
	validator *datatypes.RequestValidator,
	model llm.ModelClient,
	retriever retrieval.Retriever,
	historyStore history.Store,
) *ChatService {
	return &ChatService{
		validator:    validator,
		model:        model,
		extractor:    topics.NewExtractor(model),
		retriever:    retriever,
		history:      historyStore,
		topDocuments: DefaultTopDocuments,
	}
}

// Handle processes one raw chat request body.
//
// The flow is linear: validate → (extract topics → retrieve documents) →
// build prompt → invoke model → join content blocks → persist history.
// The first failing step short-circuits everything after it.
//
// Returns:
//   - *datatypes.ChatResponse: The answer (with citations on the
//     retrieval-augmented path).
//   - string: The session id the turn was recorded under.
//   - error: A datatypes client error (caller maps to 400) or a
//     *BackendError (caller maps to 500 with the generic message).
func (s *ChatService) Handle(ctx context.Context, raw []byte) (*datatypes.ChatResponse, string, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Handle")
	defer span.End()

	// Step 1: Validate. No external call is made for a rejected request.
	req, err := s.validator.Parse(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, "", err
	}

	sessionID := req.EnsureSessionID()
	span.SetAttributes(
		attribute.String("request.model_id", req.ModelID),
		attribute.String("session.id", sessionID),
	)
	slog.Info("Processing chat request",
		"sessionId", sessionID,
		"modelId", req.ModelID,
		"retrievalAugmented", s.retriever != nil,
	)

	// Step 2: Retrieval-augmented path - topics drive the knowledge base
	// query. Skipped entirely when no retriever is configured.
	var docs []datatypes.RetrievedDocument
	if s.retriever != nil {
		queryTopics, err := s.extractor.Extract(ctx, req.Question, req.ModelID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "topic extraction failed")
			slog.Error("Topic extraction failed", "sessionId", sessionID, "error", err)
			return nil, sessionID, &BackendError{Op: "topic extraction", Err: err}
		}

		docs, err = s.retriever.Retrieve(ctx, queryTopics, s.topDocuments)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "retrieval failed")
			slog.Error("Document retrieval failed", "sessionId", sessionID, "error", err)
			return nil, sessionID, &BackendError{Op: "document retrieval", Err: err}
		}
		span.SetAttributes(attribute.Int("retrieval.documents", len(docs)))
	}

	// Step 3: Build the prompt.
	promptText := prompt.AnswerWithContext(req.Question, req.Prompt, docs)

	// Step 4: Invoke the model with the request's sampling parameters.
	params := llm.GenerationParams{
		Temperature: req.Temperature,
		TopP:        req.TopP,
		TopK:        req.TopK,
		MaxTokens:   req.MaxTokens,
	}
	modelResp, err := s.model.Invoke(ctx, req.ModelID, promptText, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model invocation failed")
		slog.Error("Model invocation failed", "sessionId", sessionID, "modelId", req.ModelID, "error", err)
		return nil, sessionID, &BackendError{Op: "model invocation", Err: err}
	}

	// Step 5: Assemble the answer from the content blocks.
	answer := modelResp.JoinedText()

	// Step 6: Persist the turn. History failures never fail the response.
	if s.history != nil {
		if err := s.history.Append(ctx, sessionID, history.Turn{
			Question: req.Question,
			Answer:   answer,
		}); err != nil {
			slog.Warn("Failed to persist chat turn", "sessionId", sessionID, "error", err)
		}
	}

	resp := &datatypes.ChatResponse{
		Response: answer,
		Citation: datatypes.CitationsFrom(docs),
	}
	span.SetAttributes(attribute.Int("response.citations", len(resp.Citation)))

	return resp, sessionID, nil
}
