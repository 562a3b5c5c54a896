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
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsAllowOrigin is sent on every response so browser front-ends on any
// origin can call the gateway.
const corsAllowOrigin = "*"

// ApiResult is the uniform envelope every handler outcome collapses into
// before being written to the wire.
//
// Success bodies have shape {"response": ...} (plus "citation" on the
// retrieval-augmented path); error bodies always have shape {"error": ...}.
type ApiResult struct {
	StatusCode int
	Body       any
	Headers    map[string]string
}

// Success builds a 200 result carrying the given body.
func Success(body any) ApiResult {
	return ApiResult{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": corsAllowOrigin,
		},
	}
}

// Failure builds an error result with the canonical error body shape.
func Failure(statusCode int, message string) ApiResult {
	return ApiResult{
		StatusCode: statusCode,
		Body:       gin.H{"error": message},
		Headers: map[string]string{
			"Access-Control-Allow-Origin": corsAllowOrigin,
		},
	}
}

// WithHeader returns a copy of the result carrying an additional header.
func (r ApiResult) WithHeader(key, value string) ApiResult {
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[key] = value
	r.Headers = headers
	return r
}

// Write serializes the result onto the gin context.
func (r ApiResult) Write(c *gin.Context) {
	for key, value := range r.Headers {
		c.Header(key, value)
	}
	c.JSON(r.StatusCode, r.Body)
}
