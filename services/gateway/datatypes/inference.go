// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "strings"

// AnthropicVersion is the Bedrock messages protocol tag carried in every
// invocation payload.
const AnthropicVersion = "bedrock-2023-05-31"

// =============================================================================
// Invocation Payload
// =============================================================================

// MessageTurn is one role-tagged turn in the invocation payload.
type MessageTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InvocationPayload is the exact structured body sent to the model backend.
//
// # Description
//
// Built fresh per request and never persisted. Sampling parameters are taken
// verbatim from the validated request: temperature and top_p stay fractional
// floats end to end, they are not truncated to integers on the wire.
type InvocationPayload struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Messages         []MessageTurn `json:"messages"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	TopK             int           `json:"top_k"`
}

// NewInvocationPayload builds a single-turn user payload for the given prompt
// and sampling parameters.
func NewInvocationPayload(prompt string, temperature, topP float64, topK, maxTokens int) InvocationPayload {
	return InvocationPayload{
		AnthropicVersion: AnthropicVersion,
		MaxTokens:        maxTokens,
		Messages: []MessageTurn{
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		TopP:        topP,
		TopK:        topK,
	}
}

// =============================================================================
// Model Response
// =============================================================================

// ContentBlock is one chunk of generated text in the backend's response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ModelError is the error object a Bedrock-style backend embeds in its
// response body when the invocation itself failed.
type ModelError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ModelResponse is the decoded backend response.
//
// Full answers may be split across multiple content blocks; JoinedText
// reassembles them.
type ModelResponse struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type,omitempty"`
	Role    string         `json:"role,omitempty"`
	Content []ContentBlock `json:"content"`
	Error   *ModelError    `json:"error,omitempty"`
}

// JoinedText concatenates every content block's text, space-joined in block
// order, into the final answer string.
func (r *ModelResponse) JoinedText() string {
	texts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		texts = append(texts, block.Text)
	}
	return strings.Join(texts, " ")
}
