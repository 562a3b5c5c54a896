// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the gateway service.
//
// This file contains the inbound chat request, its validation, and the
// outbound chat response. For model invocation payload types, see
// inference.go; for retrieval types, see retrieval.go.
package datatypes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Defaults
// =============================================================================

// Sampling parameter defaults substituted for absent optional fields.
// These mirror the documented request contract: a request that supplies
// none of the optional knobs invokes the model with exactly these values.
const (
	DefaultTemperature = 0.1
	DefaultTopK        = 1
	DefaultTopP        = 0.1
	DefaultMaxTokens   = 1000
)

// =============================================================================
// Chat Request
// =============================================================================

// ChatRequest represents the inbound chat request body.
//
// # Description
//
// ChatRequest carries the user's question, the model to invoke, optional
// custom instruction text appended to the prompt template, and optional
// sampling parameters. Optional numeric fields are pointers so that an
// explicit zero can be distinguished from an absent field; EnsureDefaults
// fills absent fields with the documented defaults.
//
// # Validation
//
// Uses go-playground/validator:
//   - Question: required, non-empty
//   - ModelID: required, and must be a member of the configured allow-list
//
// Field-presence failures are collected across all fields before the request
// is rejected, so a request missing both question and modelId reports both.
//
// # Examples
//
//	req := ChatRequest{
//	    Question: "What is photosynthesis?",
//	    ModelID:  "anthropic.claude-3-haiku-20240307-v1:0",
//	}
//
// # Limitations
//
//   - No range validation is applied to sampling parameters; out-of-range
//     values are passed to the backend, which rejects them itself.
type ChatRequest struct {
	Question    string   `json:"question" validate:"required"`
	ModelID     string   `json:"modelId" validate:"required,allowedmodel"`
	Prompt      string   `json:"prompt"`
	SessionID   string   `json:"sessionId"`
	Temperature *float64 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float64 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
}

// EnsureDefaults populates the documented defaults for absent optional fields.
//
// After this call Temperature, TopK, TopP, and MaxTokens are non-nil.
func (r *ChatRequest) EnsureDefaults() {
	if r.Temperature == nil {
		v := float64(DefaultTemperature)
		r.Temperature = &v
	}
	if r.TopK == nil {
		v := DefaultTopK
		r.TopK = &v
	}
	if r.TopP == nil {
		v := float64(DefaultTopP)
		r.TopP = &v
	}
	if r.MaxTokens == nil {
		v := DefaultMaxTokens
		r.MaxTokens = &v
	}
}

// EnsureSessionID returns the request's session id, generating a fresh UUID
// when the client did not supply one.
func (r *ChatRequest) EnsureSessionID() string {
	if r.SessionID == "" {
		r.SessionID = uuid.New().String()
	}
	return r.SessionID
}

// =============================================================================
// Chat Response
// =============================================================================

// ChatResponse is the success body returned to the chat front-end.
//
// Citation is only populated on the retrieval-augmented path; entries are
// passed through verbatim from the retrieval backend.
type ChatResponse struct {
	Response string     `json:"response"`
	Citation []Citation `json:"citation,omitempty"`
}

// =============================================================================
// Request Validator
// =============================================================================

// jsonFieldNames maps struct field names to their wire names for error
// reporting. Kept in sync with the ChatRequest json tags.
var jsonFieldNames = map[string]string{
	"Question": "question",
	"ModelID":  "modelId",
}

// RequestValidator parses and validates raw chat request bodies.
//
// # Description
//
// RequestValidator owns a validator instance with an "allowedmodel" rule
// bound to the model allow-list supplied at construction. Parse is a pure
// function of its input: it performs no I/O and reports every problem as a
// typed error (ErrMalformedJSON, *MissingFieldsError, ErrInvalidModelID).
//
// # Thread Safety
//
// Safe for concurrent use. The allow-list is read-only after construction.
//
// # Example
//
//	rv := NewRequestValidator([]string{"anthropic.claude-3-haiku-20240307-v1:0"})
//	req, err := rv.Parse(body)
//	if err != nil {
//	    // IsClientError(err) → 400 with err.Error() as message
//	}
type RequestValidator struct {
	validate      *validator.Validate
	allowedModels map[string]struct{}
}

// NewRequestValidator creates a RequestValidator for the given model
// allow-list.
func NewRequestValidator(allowedModels []string) *RequestValidator {
	rv := &RequestValidator{
		validate:      validator.New(),
		allowedModels: make(map[string]struct{}, len(allowedModels)),
	}
	for _, m := range allowedModels {
		rv.allowedModels[m] = struct{}{}
	}
	_ = rv.validate.RegisterValidation("allowedmodel", rv.validateAllowedModel)
	return rv
}

// validateAllowedModel checks membership of the modelId in the allow-list.
func (rv *RequestValidator) validateAllowedModel(fl validator.FieldLevel) bool {
	_, ok := rv.allowedModels[fl.Field().String()]
	return ok
}

// Parse decodes and validates a raw request body.
//
// # Outputs
//
//   - *ChatRequest: The validated request with defaults applied.
//   - error: ErrMalformedJSON for unparseable bodies, *MissingFieldsError
//     naming every absent required field, ErrInvalidModelID for a model
//     outside the allow-list.
//
// Missing required fields take precedence over the allow-list check, matching
// the request contract: presence is verified for the full field set first.
func (rv *RequestValidator) Parse(raw []byte) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, ErrMalformedJSON
	}

	if err := rv.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate chat request: %w", err)
		}

		var missing []string
		invalidModel := false
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				missing = append(missing, jsonFieldNames[fe.StructField()])
			case "allowedmodel":
				invalidModel = true
			}
		}
		if len(missing) > 0 {
			return nil, &MissingFieldsError{Fields: missing}
		}
		if invalidModel {
			return nil, ErrInvalidModelID
		}
		return nil, fmt.Errorf("validate chat request: %w", err)
	}

	req.EnsureDefaults()
	return &req, nil
}
