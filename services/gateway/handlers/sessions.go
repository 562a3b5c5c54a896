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
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianGateway/services/gateway/history"
	"github.com/gin-gonic/gin"
)

// GetSessionHistory returns the handler for GET /v1/sessions/:sessionId/history.
func GetSessionHistory(store history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
			return
		}

		sessionID := c.Param("sessionId")
		turns, err := store.List(c.Request.Context(), sessionID)
		if err != nil {
			slog.Error("Failed to list session history", "sessionId", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"history":    turns,
		})
	}
}

// DeleteSession returns the handler for DELETE /v1/sessions/:sessionId.
func DeleteSession(store history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
			return
		}

		sessionID := c.Param("sessionId")
		if err := store.Clear(c.Request.Context(), sessionID); err != nil {
			slog.Error("Failed to clear session history", "sessionId", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"status":     "deleted",
		})
	}
}
