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
	"errors"
	"strings"
)

// =============================================================================
// Request Validation Errors
// =============================================================================

// clientError marks errors caused by the client's input. Handlers map these
// to HTTP 400 responses with the error text as the body message.
type clientError interface {
	error
	clientError()
}

// RequestError is a fixed-message client input error.
type RequestError struct {
	msg string
}

func (e *RequestError) Error() string { return e.msg }

func (e *RequestError) clientError() {}

// ErrMalformedJSON indicates the request body could not be parsed as JSON.
var ErrMalformedJSON = &RequestError{msg: "Invalid JSON in request body"}

// ErrInvalidModelID indicates the requested model is not on the allow-list.
var ErrInvalidModelID = &RequestError{msg: "Invalid modelId in request body"}

// MissingFieldsError lists every required field absent from the request.
//
// The validator collects all missing fields before failing, so the message
// names each one in struct declaration order rather than stopping at the
// first. Clients see e.g. "Missing required fields: question, modelId".
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) clientError() {}

// IsClientError reports whether err (or anything it wraps) was caused by
// invalid client input and should surface as a 400 rather than a 500.
func IsClientError(err error) bool {
	var ce clientError
	return errors.As(err, &ce)
}
