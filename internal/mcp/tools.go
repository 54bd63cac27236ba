package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var digestToolDef = mcp.NewTool("spec_digest",
	mcp.WithDescription("Compress a specification file into a token-efficient digest and write it to disk."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the specification file (.md, .yaml, .yml, .json)."),
	),
	mcp.WithString("level",
		mcp.Description("Compression level: low, medium, or high. Defaults to the configured level."),
	),
	mcp.WithString("output",
		mcp.Description("Digest output path. Defaults to <name>.digest.<ext> next to the source."),
	),
	mcp.WithString("format",
		mcp.Description("Output format: yaml, json, markdown, or compact. Defaults to the input format."),
	),
	mcp.WithBoolean("force",
		mcp.Description("Overwrite an existing digest file."),
	),
	mcp.WithBoolean("dry_run",
		mcp.Description("Generate and measure without writing the digest file."),
	),
)

var metricsToolDef = mcp.NewTool("digest_metrics",
	mcp.WithDescription("Measure the token savings a digest would achieve, with a per-section breakdown. Writes nothing."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the specification file."),
	),
	mcp.WithString("level",
		mcp.Description("Compression level: low, medium, or high."),
	),
)

var historyToolDef = mcp.NewTool("digest_history",
	mcp.WithDescription("List recorded digest runs, newest first."),
	mcp.WithString("source_file",
		mcp.Description("Only show runs for this specification file."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of runs to return."),
	),
)
