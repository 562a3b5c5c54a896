// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package topics extracts retrieval query terms from a user question.
//
// The extractor issues a side model call asking for the question's topics,
// keywords, and synonyms in a constrained <topics><topic> XML format, parses
// that list, and always appends the raw question as the final entry so a
// usable query term exists even when extraction yields nothing.
package topics

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianGateway/services/gateway/prompt"
	"github.com/AleutianAI/AleutianGateway/services/llm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("aleutian.gateway.topics")

// Fixed sampling parameters for the extraction call. These are deliberately
// distinct from the user-supplied sampling parameters; the extraction call is
// never user-tunable.
const (
	extractionMaxTokens   = 1000
	extractionTemperature = 0.1
	extractionTopP        = 0.9
	extractionTopK        = 500
)

// ErrMalformedModelOutput indicates the model's response was not parseable as
// the expected <topics> markup. Distinct from backend/transport failures so a
// caller can choose a corrective re-prompt later (none is attempted today).
var ErrMalformedModelOutput = errors.New("model output is not a parseable topic list")

// Extractor issues topic-extraction calls against a model backend.
//
// # Thread Safety
//
// Safe for concurrent use; the extractor holds no mutable state.
type Extractor struct {
	model llm.ModelClient
}

// NewExtractor creates an Extractor backed by the given model client.
func NewExtractor(model llm.ModelClient) *Extractor {
	return &Extractor{model: model}
}

// Extract returns the question's topics in document order, with the original
// question always appended as the final entry.
//
// # Outputs
//
//   - []string: N parsed topics followed by the question (length N+1).
//   - error: ErrMalformedModelOutput (wrapped) if the response markup could
//     not be parsed; any other error is a backend failure from the model call.
func (e *Extractor) Extract(ctx context.Context, question, modelID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Extractor.Extract")
	defer span.End()
	span.SetAttributes(attribute.String("model.id", modelID))

	temperature := float64(extractionTemperature)
	topP := float64(extractionTopP)
	topK := extractionTopK
	maxTokens := extractionMaxTokens
	params := llm.GenerationParams{
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
		MaxTokens:   &maxTokens,
	}

	resp, err := e.model.Invoke(ctx, modelID, prompt.TopicExtraction(question), params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "topic extraction call failed")
		return nil, fmt.Errorf("topic extraction call: %w", err)
	}

	parsed, err := parseTopicList(resp.JoinedText())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed topic markup")
		return nil, err
	}

	topics := append(parsed, question)
	span.SetAttributes(attribute.Int("topics.count", len(topics)))
	slog.Debug("Extracted question topics", "count", len(topics))

	return topics, nil
}

// topicList matches the constrained output format requested by the
// extraction template.
type topicList struct {
	Topics []string `xml:"topic"`
}

// parseTopicList locates the first <topics> element in the model output and
// returns its entries in document order. The scan is tolerant of leading or
// trailing prose (models often wrap the XML in commentary or code fences);
// absence of a well-formed list is ErrMalformedModelOutput.
func parseTopicList(output string) ([]string, error) {
	start := strings.Index(output, "<topics")
	end := strings.Index(output, "</topics>")
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("%w: no <topics> element found", ErrMalformedModelOutput)
	}
	fragment := output[start : end+len("</topics>")]

	var parsed topicList
	if err := xml.Unmarshal([]byte(fragment), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	topics := make([]string, 0, len(parsed.Topics))
	for _, topic := range parsed.Topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics, nil
}
