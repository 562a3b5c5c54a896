// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
		{Level(-1), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Constants(t *testing.T) {
	// Verify ordering: Debug < Info < Warn < Error
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be < LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be < LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be < LevelError")
	}
}

// =============================================================================
// Logger Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	defer logger.Close()
}

func TestNew_AllLevels(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			logger := New(Config{Level: level, Quiet: true})
			if logger == nil {
				t.Fatal("New() returned nil")
			}
			defer logger.Close()
		})
	}
}

func TestNew_WithService(t *testing.T) {
	logger := New(Config{
		Service: "test-service",
		Quiet:   true,
	})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.config.Service != "test-service" {
		t.Errorf("Service = %v, want test-service", logger.config.Service)
	}
	defer logger.Close()
}

func TestNew_QuietMode(t *testing.T) {
	logger := New(Config{Quiet: true})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	// Should still have a handler (fallback to stderr)
	if logger.slog == nil {
		t.Error("logger.slog is nil in quiet mode")
	}
	defer logger.Close()
}

func TestNew_WithLogDir(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		LogDir:  tmpDir,
		Service: "gateway",
		Quiet:   true,
	})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	defer logger.Close()

	// Should have created a log file
	if logger.file == nil {
		t.Error("logger.file is nil when LogDir specified")
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(files) == 0 {
		t.Error("No log file created in LogDir")
	}
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		LogDir: tmpDir,
		Quiet:  true,
	})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	defer logger.Close()

	// Should use "aleutian" as default service name
	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "aleutian_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected log file with 'aleutian_' prefix")
	}
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	// Use a path that can't be created
	logger := New(Config{
		LogDir: "/proc/nonexistent/deep/path/that/should/fail",
		Quiet:  true,
	})
	if logger == nil {
		t.Fatal("New() returned nil even with invalid LogDir")
	}
	defer logger.Close()
	// Should still work, just without file logging
	if logger.file != nil {
		t.Error("logger.file should be nil for invalid path")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	defer logger.Close()
	if logger.config.Service != "gateway" {
		t.Errorf("Service = %v, want gateway", logger.config.Service)
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Level = %v, want LevelInfo", logger.config.Level)
	}
}

// =============================================================================
// Logging Method Tests
// =============================================================================

func TestLogger_FileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  tmpDir,
		Service: "gateway",
		Quiet:   true,
	})

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "session_id", "abc-123")
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 log file, got %d", len(files))
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, files[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"debug message",
		"info message",
		"session_id",
		"warn message",
		"error message",
		`"service":"gateway"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Log file missing %q\ncontent: %s", want, content)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		Level:  LevelWarn,
		LogDir: tmpDir,
		Quiet:  true,
	})

	logger.Debug("filtered debug")
	logger.Info("filtered info")
	logger.Warn("kept warn")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files, _ := os.ReadDir(tmpDir)
	data, err := os.ReadFile(filepath.Join(tmpDir, files[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "filtered debug") {
		t.Error("Debug message should have been filtered")
	}
	if strings.Contains(content, "filtered info") {
		t.Error("Info message should have been filtered")
	}
	if !strings.Contains(content, "kept warn") {
		t.Error("Warn message should have been kept")
	}
}

func TestLogger_With(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{
		LogDir: tmpDir,
		Quiet:  true,
	})

	child := logger.With("session_id", "xyz-789")
	if child == logger {
		t.Error("With() should return a new logger")
	}
	child.Info("child message")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files, _ := os.ReadDir(tmpDir)
	data, err := os.ReadFile(filepath.Join(tmpDir, files[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "xyz-789") {
		t.Error("Child logger attributes missing from output")
	}
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

func TestLogger_Close_NoFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on file-less logger returned error: %v", err)
	}
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_Enabled(t *testing.T) {
	debugOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	errorOpts := &slog.HandlerOptions{Level: slog.LevelError}

	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stderr, errorOpts),
		slog.NewTextHandler(os.Stderr, debugOpts),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled() should be true when any handler accepts the level")
	}

	errorOnly := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stderr, errorOpts),
	}}
	if errorOnly.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled() should be false when no handler accepts the level")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stderr, nil),
		slog.NewJSONHandler(os.Stderr, nil),
	}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")})
	mh, ok := h2.(*multiHandler)
	if !ok {
		t.Fatal("WithAttrs() should return a *multiHandler")
	}
	if len(mh.handlers) != 2 {
		t.Errorf("Expected 2 handlers, got %d", len(mh.handlers))
	}
}

func TestMultiHandler_WithGroup(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stderr, nil),
	}}

	h2 := h.WithGroup("request")
	if _, ok := h2.(*multiHandler); !ok {
		t.Fatal("WithGroup() should return a *multiHandler")
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"tilde prefix", "~/logs", filepath.Join(home, "logs")},
		{"absolute path", "/var/log", "/var/log"},
		{"relative path", "relative/path", "relative/path"},
		{"empty path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.path)
			if got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
