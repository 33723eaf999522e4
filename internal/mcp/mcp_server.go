// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mccforecast/fcst/internal/contract"
)

// NewMCPServer initializes and configures the fcst MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Forecast Evaluation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: evaluate_forecast ---
	s.AddTool(mcp.NewTool("evaluate_forecast",
		mcp.WithDescription("Compute sMAPE_w, RMSSE_w, MAE and RMSE for a forecast, overall and per category."),
		mcp.WithString("model_name", mcp.Description("Name shown in the report header (defaults to 'model').")),
		mcp.WithArray("y_true", mcp.Description("Actual values."), mcp.Required(), mcp.WithNumberItems()),
		mcp.WithArray("y_pred", mcp.Description("Forecast values aligned with y_true."), mcp.Required(), mcp.WithNumberItems()),
		mcp.WithArray("y_train", mcp.Description("Training series used to scale RMSSE (at least 2 values)."), mcp.Required(), mcp.WithNumberItems()),
		mcp.WithArray("categories", mcp.Description("Optional category label per sample, e.g. the MCC code. Strings or numbers.")),
	), h.handleEvaluateForecast)

	// --- 2. Tool: get_metric_definitions ---
	s.AddTool(mcp.NewTool("get_metric_definitions",
		mcp.WithDescription("Describe the accuracy metrics and their formulas."),
	), h.handleGetMetricDefinitions)

	// --- 3. Tool: convert_csv ---
	s.AddTool(mcp.NewTool("convert_csv",
		mcp.WithDescription("Convert one CSV file to a typed, compressed Parquet file next to it."),
		mcp.WithString("path", mcp.Description("Path to the CSV file."), mcp.Required()),
		mcp.WithBoolean("force", mcp.Description("Overwrite an existing Parquet file.")),
	), h.handleConvertCSV)

	return s
}

// StartMCPServer starts the fcst MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
