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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Citation Tests
// =============================================================================

func TestCitationsFrom_PreservesRankOrder(t *testing.T) {
	docs := []RetrievedDocument{
		{Content: "first", Location: "s3://b/one.pdf", DocumentName: "one.pdf", Distance: 0.1},
		{Content: "second", Location: "s3://b/two.pdf", DocumentName: "two.pdf", Distance: 0.4},
	}

	citations := CitationsFrom(docs)
	require.Len(t, citations, 2)
	assert.Equal(t, "first", citations[0].Content)
	assert.Equal(t, "one.pdf", citations[0].DocumentName)
	assert.Equal(t, "s3://b/two.pdf", citations[1].Location)
}

func TestCitationsFrom_Empty(t *testing.T) {
	assert.Nil(t, CitationsFrom(nil))
	assert.Nil(t, CitationsFrom([]RetrievedDocument{}))
}

// =============================================================================
// ParseGraphQLResponse Tests
// =============================================================================

type testGetResponse struct {
	Get struct {
		Document []struct {
			Content string `json:"content"`
		} `json:"Document"`
	} `json:"Get"`
}

func TestParseGraphQLResponse_Success(t *testing.T) {
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{
				"Document": []any{
					map[string]any{"content": "snippet one"},
					map[string]any{"content": "snippet two"},
				},
			},
		},
	}

	parsed, err := ParseGraphQLResponse[testGetResponse](resp)
	require.NoError(t, err)
	require.Len(t, parsed.Get.Document, 2)
	assert.Equal(t, "snippet one", parsed.Get.Document[0].Content)
}

func TestParseGraphQLResponse_NilResponse(t *testing.T) {
	_, err := ParseGraphQLResponse[testGetResponse](nil)
	assert.Error(t, err)
}

func TestParseGraphQLResponse_EmptyData(t *testing.T) {
	resp := &models.GraphQLResponse{Data: map[string]models.JSONObject{}}

	parsed, err := ParseGraphQLResponse[testGetResponse](resp)
	require.NoError(t, err)
	assert.Empty(t, parsed.Get.Document)
}
