// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package retrieval provides knowledge-base document retrieval for the
// retrieval-augmented chat path.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("aleutian.gateway.retrieval")

// DefaultDocumentClass is the Weaviate class holding knowledge-base snippets.
const DefaultDocumentClass = "Document"

// Retriever defines the contract for the document-retrieval collaborator.
//
// # Description
//
// Retriever abstracts the knowledge base behind a single ranked-snippet
// query. The queries slice carries the extracted topic terms (original
// question last); implementations decide how to combine them.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Retriever interface {
	Retrieve(ctx context.Context, queries []string, limit int) ([]datatypes.RetrievedDocument, error)
}

// documentQueryResponse matches the GraphQL Get response for the document
// class.
type documentQueryResponse struct {
	Get struct {
		Document []struct {
			Content      string `json:"content"`
			Location     string `json:"location"`
			DocumentName string `json:"document_name"`
			Additional   struct {
				Distance float64 `json:"distance"`
			} `json:"_additional"`
		} `json:"Document"`
	} `json:"Get"`
}

// WeaviateRetriever implements Retriever using a Weaviate near-text query.
//
// # Example
//
//	retriever := NewWeaviateRetriever(client, DefaultDocumentClass)
//	docs, err := retriever.Retrieve(ctx, topics, 5)
type WeaviateRetriever struct {
	client *weaviate.Client
	class  string
}

// NewWeaviateRetriever creates a retriever over the given class. An empty
// class name selects DefaultDocumentClass.
func NewWeaviateRetriever(client *weaviate.Client, class string) *WeaviateRetriever {
	if class == "" {
		class = DefaultDocumentClass
	}
	return &WeaviateRetriever{client: client, class: class}
}

// Retrieve runs a near-text query over the document class with the topic
// terms as concepts and returns the ranked snippets in result order.
func (r *WeaviateRetriever) Retrieve(ctx context.Context, queries []string, limit int) ([]datatypes.RetrievedDocument, error) {
	ctx, span := tracer.Start(ctx, "WeaviateRetriever.Retrieve")
	defer span.End()
	span.SetAttributes(
		attribute.Int("retrieval.query_count", len(queries)),
		attribute.Int("retrieval.limit", limit),
	)

	if len(queries) == 0 {
		return nil, fmt.Errorf("no retrieval queries provided")
	}

	nearText := r.client.GraphQL().NearTextArgBuilder().
		WithConcepts(queries)

	resp, err := r.client.GraphQL().Get().
		WithClassName(r.class).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "location"},
			graphql.Field{Name: "document_name"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
		).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge base query failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("knowledge base query returned errors: %v", resp.Errors[0].Message)
	}

	parsed, err := datatypes.ParseGraphQLResponse[documentQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base response: %w", err)
	}

	docs := make([]datatypes.RetrievedDocument, 0, len(parsed.Get.Document))
	for _, hit := range parsed.Get.Document {
		docs = append(docs, datatypes.RetrievedDocument{
			Content:      hit.Content,
			Location:     hit.Location,
			DocumentName: hit.DocumentName,
			Distance:     hit.Additional.Distance,
		})
	}

	slog.Debug("Retrieved knowledge base documents", "count", len(docs))
	span.SetAttributes(attribute.Int("retrieval.results", len(docs)))

	return docs, nil
}
