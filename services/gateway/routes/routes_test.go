// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianGateway/services/gateway/services"
	"github.com/AleutianAI/AleutianGateway/services/llm"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubModelClient struct{}

func (s *stubModelClient) Invoke(ctx context.Context, modelID string, prompt string, params llm.GenerationParams) (*datatypes.ModelResponse, error) {
	return &datatypes.ModelResponse{
		Content: []datatypes.ContentBlock{{Type: "text", Text: "stub answer"}},
	}, nil
}

func setupTestRouter() *gin.Engine {
	validator := datatypes.NewRequestValidator([]string{"anthropic.claude-3-haiku-20240307-v1:0"})
	svc := services.NewChatService(validator, &stubModelClient{}, nil, nil)

	router := gin.New()
	SetupRoutes(router, svc, nil)
	return router
}

func TestSetupRoutes_Health(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSetupRoutes_Metrics(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Standard Go process metrics are always exported
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSetupRoutes_Chat(t *testing.T) {
	router := setupTestRouter()

	body := []byte(`{"question": "q", "modelId": "anthropic.claude-3-haiku-20240307-v1:0"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/chat", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response": "stub answer"}`, w.Body.String())
}

func TestSetupRoutes_SessionsWithoutStore(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/sessions/s1/history", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/v1/sessions/s1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetupRoutes_UnknownPath(t *testing.T) {
	router := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/unknown", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
