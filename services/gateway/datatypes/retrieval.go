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

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Retrieval Types
// =============================================================================

// RetrievedDocument is one ranked snippet returned by the knowledge base.
type RetrievedDocument struct {
	Content      string  `json:"content"`
	Location     string  `json:"location"`
	DocumentName string  `json:"document_name"`
	Distance     float64 `json:"distance,omitempty"`
}

// Citation is the per-document provenance entry included in a
// retrieval-augmented chat response. Values are passed through verbatim from
// the retrieval backend.
type Citation struct {
	Content      string `json:"content"`
	Location     string `json:"location"`
	DocumentName string `json:"document_name"`
}

// CitationsFrom converts retrieved documents into response citations,
// preserving rank order.
func CitationsFrom(docs []RetrievedDocument) []Citation {
	if len(docs) == 0 {
		return nil
	}
	citations := make([]Citation, 0, len(docs))
	for _, doc := range docs {
		citations = append(citations, Citation{
			Content:      doc.Content,
			Location:     doc.Location,
			DocumentName: doc.DocumentName,
		})
	}
	return citations
}

// =============================================================================
// Generic GraphQL Response Parser
// =============================================================================

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target type.
//
// # Description
//
// Encapsulates the marshal/unmarshal pattern needed to convert Weaviate's
// dynamic response data into a strongly-typed struct. The target type T must
// have json tags matching the expected response shape.
//
// # Limitations
//
//   - Type mismatches produce zero values, not errors.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}
