package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mccforecast/fcst/core"
	"github.com/mccforecast/fcst/core/convert"
	"github.com/mccforecast/fcst/core/metrics"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/outwriter"
	"github.com/mccforecast/fcst/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) profileStore() contract.CacheStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetProfileStore()
}

func (h *toolHandler) handleEvaluateForecast(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modelName := request.GetString("model_name", contract.DefaultModelName)

	yTrue, err := request.RequireFloatSlice("y_true")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid y_true: %v", err)), nil
	}
	yPred, err := request.RequireFloatSlice("y_pred")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid y_pred: %v", err)), nil
	}
	yTrain, err := request.RequireFloatSlice("y_train")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid y_train: %v", err)), nil
	}
	categories, err := categoryLabels(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid categories: %v", err)), nil
	}

	result, err := core.EvaluateResult(modelName, yTrue, yPred, yTrain, categories)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	doc := outwriter.NewEvaluationDocument(result)
	doc.Report = result.Report
	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// categoryLabels reads the optional categories argument. Numeric labels such
// as MCC codes are formatted as text; any other item type is rejected.
func categoryLabels(request mcp.CallToolRequest) ([]string, error) {
	raw, ok := request.GetArguments()["categories"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", raw)
	}
	labels := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			labels[i] = v
		case float64:
			labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			labels[i] = strconv.Itoa(v)
		case int64:
			labels[i] = strconv.FormatInt(v, 10)
		default:
			return nil, fmt.Errorf("item %d has unsupported type %T", i, item)
		}
	}
	return labels, nil
}

func (h *toolHandler) handleGetMetricDefinitions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(metrics.RenderModel(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleConvertCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	opts := convert.DefaultOptions()
	if h.baseCfg != nil {
		if h.baseCfg.ChunkSize > 0 {
			opts.ChunkSize = h.baseCfg.ChunkSize
		}
		if h.baseCfg.CategoryRatio > 0 {
			opts.CategoryRatio = h.baseCfg.CategoryRatio
		}
		if len(h.baseCfg.Categorical) > 0 {
			opts.Categorical = h.baseCfg.Categorical
		}
	}
	opts.Force = request.GetBool("force", false)

	result, err := convert.ConvertFile(ctx, path, opts, h.profileStore())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", err)), nil
	}
	if result.Status == schema.MissingStatus {
		return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
