// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import "fmt"

// GenericBackendFailureMessage is the only text a caller ever sees for a
// backend failure. The real cause is logged server-side and must not leak
// into the response body.
const GenericBackendFailureMessage = "Server side error: please check function logs"

// BackendError wraps a transport or service failure from a collaborator
// (model backend, retrieval backend). Handlers map it to a 500 with the
// generic message.
type BackendError struct {
	// Op names the failing step, e.g. "topic extraction" or "model invocation".
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
