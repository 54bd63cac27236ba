package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// DigestRequest represents the arguments for spec_digest.
type DigestRequest struct {
	Path   string `json:"path"`
	Level  string `json:"level,omitempty"`
	Output string `json:"output,omitempty"`
	Format string `json:"format,omitempty"`
	Force  bool   `json:"force,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// MetricsRequest represents the arguments for digest_metrics.
type MetricsRequest struct {
	Path  string `json:"path"`
	Level string `json:"level,omitempty"`
}

// HistoryRequest represents the arguments for digest_history.
type HistoryRequest struct {
	SourceFile string `json:"source_file,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// HandleDigest handles the spec_digest tool call.
func (h *Handlers) HandleDigest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DigestRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	out, err := ops.Digest(h.db, h.cfg, ops.DigestInput{
		Path:   input.Path,
		Level:  input.Level,
		Output: input.Output,
		Format: input.Format,
		Force:  input.Force,
		DryRun: input.DryRun,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"run_id":             out.RunID,
		"source_file":        out.SourceFile,
		"digest_file":        out.DigestFile,
		"profile":            out.Profile,
		"original_tokens":    out.OriginalTokens,
		"digest_tokens":      out.DigestTokens,
		"percent_saved":      out.PercentSaved,
		"processing_time_ms": out.ProcessingTimeMS,
		"meets_minimum":      out.MeetsMinimum,
		"dry_run":            input.DryRun,
	})
}

// HandleMetrics handles the digest_metrics tool call.
func (h *Handlers) HandleMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MetricsRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	m, err := ops.Metrics(h.cfg, input.Path, input.Level)
	if err != nil {
		return errorResult(err), nil
	}

	report, err := m.ToJSON()
	if err != nil {
		return errorResult(err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: report}},
	}, nil
}

// HandleHistory handles the digest_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	runs, err := ops.History(h.db, input.SourceFile, input.Limit)
	if err != nil {
		return errorResult(err), nil
	}

	items := make([]map[string]any, len(runs))
	for i, r := range runs {
		items[i] = map[string]any{
			"run_id":            r.ID,
			"source_file":       r.SourceFile,
			"digest_file":       r.DigestFile,
			"profile":           r.Profile,
			"original_tokens":   r.OriginalTokens,
			"digest_tokens":     r.DigestTokens,
			"compression_ratio": r.CompressionRatio,
			"duration_ms":       r.Duration.Milliseconds(),
			"created_at":        r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return successResult(map[string]any{"runs": items, "count": len(items)})
}

// errorResult converts an error into an MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		errorObj := map[string]any{
			"code":    string(appErr.Code),
			"message": appErr.Message,
		}
		// Internal errors keep their details out of the response so file
		// paths and SQL text do not leak.
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    string(errors.ErrInternal),
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult wraps data in a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
