package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/recap"
)

// MCP Protocol types
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type MCPToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type MCPInitializeResult struct {
	ProtocolVersion string        `json:"protocolVersion"`
	ServerInfo      MCPServerInfo `json:"serverInfo"`
	Capabilities    interface{}   `json:"capabilities"`
}

// GetRecapParams are the parameters for the get_recap tool
type GetRecapParams struct {
	Date string `json:"date"`
	Raw  bool   `json:"raw"`
}

// runMCPServer starts the MCP server on stdio
func runMCPServer(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	// Increase buffer size for large messages
	const maxCapacity = 10 * 1024 * 1024 // 10MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			// For parse errors we cannot know the ID, so log to stderr
			// instead of answering with id: null
			fmt.Fprintf(os.Stderr, "[MCP] Parse error: %v\n", err)
			continue
		}

		handleMCPRequest(ctx, &req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

func handleMCPRequest(ctx context.Context, req *MCPRequest) {
	switch req.Method {
	case "initialize":
		handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notifications don't get responses - silently ignore
		return
	case "tools/list":
		handleToolsList(req)
	case "tools/call":
		handleToolsCall(ctx, req)
	default:
		// Notifications (no ID) are silently ignored per JSON-RPC spec
		if req.ID != nil {
			sendError(req.ID, -32601, "Method not found", req.Method)
		}
	}
}

func handleInitialize(req *MCPRequest) {
	result := MCPInitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo: MCPServerInfo{
			Name:    "aewiki-recap",
			Version: core.Version,
		},
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
	}
	sendResponse(req.ID, result)
}

func handleToolsList(req *MCPRequest) {
	tools := []MCPToolInfo{
		{
			Name:        "get_recap",
			Description: "Fetch the aewiki contributor leaderboard for a date.\n\nArgs:\n    date: Date in YYYY-MM-DD format; omit for the most recent available recap\n    raw: Return the raw snapshot JSON instead of formatted rows\n\nReturns:\n    Dictionary containing the resolved date and the contributor leaderboard",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"date": map[string]interface{}{
						"type":        "string",
						"description": "Date in YYYY-MM-DD format (default: most recent available)",
					},
					"raw": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the raw snapshot JSON instead of formatted rows",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "list_dates",
			Description: "List all dates with an available aewiki recap.\n\nReturns:\n    Dictionary containing the sorted dates and the most recent one",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}

	sendResponse(req.ID, map[string]interface{}{"tools": tools})
}

func handleToolsCall(ctx context.Context, req *MCPRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	switch params.Name {
	case "get_recap":
		handleGetRecap(ctx, req.ID, params.Arguments)
	case "list_dates":
		handleListDates(ctx, req.ID)
	default:
		sendError(req.ID, -32602, "Unknown tool", params.Name)
	}
}

func handleGetRecap(ctx context.Context, id interface{}, argsJSON json.RawMessage) {
	var args GetRecapParams
	if len(argsJSON) > 0 {
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			sendToolError(id, fmt.Sprintf("Invalid arguments: %v", err))
			return
		}
	}

	if args.Date != "" && !core.IsDateKey(args.Date) {
		sendToolResult(id, map[string]interface{}{
			"error":        fmt.Sprintf("Invalid date: %s", args.Date),
			"valid_format": "YYYY-MM-DD",
			"date":         args.Date,
		})
		return
	}

	d, err := buildDeps(ctx)
	if err != nil {
		sendToolError(id, fmt.Sprintf("Configuration error: %v", err))
		return
	}

	date := d.service.ResolveInitialDate(ctx, args.Date)
	snap, err := d.service.Fetch(ctx, date)
	if errors.Is(err, recap.ErrNotAvailable) {
		sendToolResult(id, map[string]interface{}{
			"error": "no recap data available",
			"date":  date,
		})
		return
	}
	if err != nil {
		sendToolResult(id, map[string]interface{}{
			"error": err.Error(),
			"date":  date,
		})
		return
	}

	result := map[string]interface{}{
		"date":               date,
		"display_date":       core.DisplayDate(date),
		"total_contributors": snap.TotalContributors,
	}
	if args.Raw {
		result["snapshot"] = snap
	} else {
		result["contributors"] = formatContributorsForDisplay(snap)
	}

	sendToolResult(id, result)
}

func handleListDates(ctx context.Context, id interface{}) {
	d, err := buildDeps(ctx)
	if err != nil {
		sendToolError(id, fmt.Sprintf("Configuration error: %v", err))
		return
	}

	dates := d.service.Index().Dates(ctx)
	latest, _ := d.service.Index().MostRecent(ctx)

	sendToolResult(id, map[string]interface{}{
		"dates":  dates,
		"latest": latest,
		"count":  len(dates),
	})
}

func formatContributorsForDisplay(snap *api.Snapshot) []map[string]interface{} {
	ranked := append([]api.Contributor(nil), snap.Contributors...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Contributions > ranked[j].Contributions
	})

	formatted := make([]map[string]interface{}, 0, len(ranked))
	for i, c := range ranked {
		text := c.ContributionsText
		if text == "" {
			text = fmt.Sprintf("%g contributions", c.Contributions)
		}
		formatted = append(formatted, map[string]interface{}{
			"rank":          i + 1,
			"user_name":     c.UserName,
			"contributions": text,
			"is_admin":      c.IsAdmin,
			"avatar":        recap.AvatarURL(c.Avatar),
		})
	}

	return formatted
}

func sendResponse(id interface{}, result interface{}) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	data, _ := json.Marshal(resp)
	fmt.Println(string(data))
}

func sendError(id interface{}, code int, message, data string) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	data2, _ := json.Marshal(resp)
	fmt.Println(string(data2))
}

func sendToolResult(id interface{}, result interface{}) {
	sendResponse(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": mustMarshal(result),
			},
		},
	})
}

func sendToolError(id interface{}, message string) {
	sendResponse(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": message,
			},
		},
		"isError": true,
	})
}

func mustMarshal(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}
