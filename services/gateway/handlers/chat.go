// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianGateway/services/gateway/observability"
	"github.com/AleutianAI/AleutianGateway/services/gateway/services"
	"github.com/AleutianAI/AleutianGateway/services/gateway/topics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var chatTracer = otel.Tracer("aleutian.gateway.handlers")

const chatEndpoint = "chat"

// HandleChat returns the handler for POST /v1/chat.
//
// The raw body is handed to the chat service untouched so that JSON parsing
// and validation failures are classified there; this handler only maps the
// typed outcome onto the wire:
//   - client input errors → 400 with the error's own message
//   - any backend failure → 500 with the fixed generic message
//   - success → 200 {"response": ...} and the CORS header
func HandleChat(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()
		start := time.Now()

		raw, err := c.GetRawData()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to read chat request body", "error", err)
			observability.DefaultMetrics.RecordError(chatEndpoint, "malformed_json")
			observability.DefaultMetrics.RecordRequest(chatEndpoint, "client_error", time.Since(start))
			Failure(http.StatusBadRequest, datatypes.ErrMalformedJSON.Error()).Write(c)
			return
		}

		resp, sessionID, err := svc.Handle(ctx, raw)
		if err != nil {
			result, status, kind := classifyError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, kind)
			observability.DefaultMetrics.RecordError(chatEndpoint, kind)
			observability.DefaultMetrics.RecordRequest(chatEndpoint, status, time.Since(start))
			result.Write(c)
			return
		}

		result := Success(resp)
		if sessionID != "" {
			result = result.WithHeader("X-Session-Id", sessionID)
		}
		observability.DefaultMetrics.RecordRequest(chatEndpoint, "success", time.Since(start))
		result.Write(c)
	}
}

// classifyError maps a chat service error to its wire result, the metric
// status label, and the metric error kind.
func classifyError(err error) (result ApiResult, status string, kind string) {
	if datatypes.IsClientError(err) {
		switch {
		case errors.Is(err, datatypes.ErrMalformedJSON):
			kind = "malformed_json"
		case errors.Is(err, datatypes.ErrInvalidModelID):
			kind = "invalid_model"
		default:
			kind = "missing_fields"
		}
		return Failure(http.StatusBadRequest, err.Error()), "client_error", kind
	}

	kind = "backend_error"
	if errors.Is(err, topics.ErrMalformedModelOutput) {
		kind = "malformed_model_output"
	}
	return Failure(http.StatusInternalServerError, services.GenericBackendFailureMessage),
		"backend_error", kind
}
