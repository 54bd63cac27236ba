package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/db"
)

const sampleSpec = `# Gateway Service

## Overview

It is important to note that the gateway basically fronts all of the
public traffic for the entire platform in a comprehensive and detailed
manner, including but not limited to the rate limiting we describe below.

## Functional Requirements

- **FR-001**: The system MUST reject requests above the configured rate
  limit in order to protect upstream services.

## Assumptions

We assume that it is important to note that clients basically retry with
backoff for the purpose of this document.
`

// testSetup creates a temporary database, config, and spec file.
func testSetup(t *testing.T) (*Handlers, string) {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Init(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	path := filepath.Join(dir, "gateway.md")
	if err := os.WriteFile(path, []byte(sampleSpec), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return NewHandlers(database, config.Default()), path
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleDigest(t *testing.T) {
	h, path := testSetup(t)

	result, err := h.HandleDigest(context.Background(), makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("HandleDigest() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleDigest() returned error result: %s", resultText(t, result))
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if payload["profile"] != "default" {
		t.Errorf("profile = %v, want default", payload["profile"])
	}
	if payload["run_id"] == "" {
		t.Error("run_id is empty")
	}

	digestFile, _ := payload["digest_file"].(string)
	if _, err := os.Stat(digestFile); err != nil {
		t.Errorf("digest file missing: %v", err)
	}
}

func TestHandleDigestDryRun(t *testing.T) {
	h, path := testSetup(t)

	result, err := h.HandleDigest(context.Background(), makeRequest(map[string]any{
		"path":    path,
		"dry_run": true,
	}))
	if err != nil {
		t.Fatalf("HandleDigest() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleDigest() returned error result: %s", resultText(t, result))
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".md") + ".digest.md"); !os.IsNotExist(err) {
		t.Error("dry run wrote a digest file")
	}
}

func TestHandleDigestMissingFile(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleDigest(context.Background(), makeRequest(map[string]any{
		"path": "/nowhere/spec.md",
	}))
	if err != nil {
		t.Fatalf("HandleDigest() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing file")
	}
	if !strings.Contains(resultText(t, result), "NOT_FOUND") {
		t.Errorf("error result missing code: %s", resultText(t, result))
	}
}

func TestHandleMetrics(t *testing.T) {
	h, path := testSetup(t)

	result, err := h.HandleMetrics(context.Background(), makeRequest(map[string]any{
		"path":  path,
		"level": "high",
	}))
	if err != nil {
		t.Fatalf("HandleMetrics() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleMetrics() returned error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{`"section_breakdown"`, `"original_tokens"`, `"percent_saved"`} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics report missing %q", want)
		}
	}
}

func TestHandleHistory(t *testing.T) {
	h, path := testSetup(t)

	for i := 0; i < 2; i++ {
		result, err := h.HandleDigest(context.Background(), makeRequest(map[string]any{
			"path":  path,
			"force": true,
		}))
		if err != nil {
			t.Fatalf("HandleDigest() error = %v", err)
		}
		if result.IsError {
			t.Fatalf("HandleDigest() returned error result: %s", resultText(t, result))
		}
	}

	result, err := h.HandleHistory(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleHistory() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleHistory() returned error result: %s", resultText(t, result))
	}

	var payload struct {
		Runs  []map[string]any `json:"runs"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

func TestHandleHistoryWithoutDatabase(t *testing.T) {
	h := NewHandlers(nil, config.Default())

	result, err := h.HandleHistory(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleHistory() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result without database")
	}
	if !strings.Contains(resultText(t, result), "DEPENDENCY") {
		t.Errorf("error result missing code: %s", resultText(t, result))
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}
	want := map[string]bool{"spec_digest": true, "digest_metrics": true, "digest_history": true}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected tool %q", name)
		}
	}
}

func TestNewServer(t *testing.T) {
	var database *sql.DB
	s := NewServer(database, config.Default(), "test")
	if s == nil {
		t.Fatal("NewServer() returned nil")
	}
}
