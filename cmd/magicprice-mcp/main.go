// magicprice-mcp is an MCP stdio server that exposes the magicprice scan as
// a tool. It is a thin client of the HTTP API: it consumes the SSE stream of
// a scan and returns the aggregated result set once the scan completes.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scanRequest mirrors the magicprice API request model.
type scanRequest struct {
	URL      string     `json:"url"`
	CIDs     []cidEntry `json:"cids,omitempty"`
	Currency string     `json:"currency,omitempty"`
}

type cidEntry struct {
	CID  string `json:"cid"`
	Name string `json:"name,omitempty"`
}

// scanEvent mirrors the magicprice SSE event model.
type scanEvent struct {
	Type             string          `json:"type"`
	TotalCIDs        int             `json:"total_cids,omitempty"`
	Step             int             `json:"step,omitempty"`
	Total            int             `json:"total,omitempty"`
	CID              string          `json:"cid,omitempty"`
	Data             json.RawMessage `json:"data,omitempty"`
	Error            string          `json:"error,omitempty"`
	Code             string          `json:"code,omitempty"`
	TotalResults     *int            `json:"total_results,omitempty"`
	TotalPricesFound *int            `json:"total_prices_found,omitempty"`
	Lowest           json.RawMessage `json:"lowest,omitempty"`
}

// scanSummary is the aggregated tool output.
type scanSummary struct {
	Results          []json.RawMessage `json:"results"`
	Errors           []scanError       `json:"errors,omitempty"`
	TotalResults     int               `json:"total_results"`
	TotalPricesFound int               `json:"total_prices_found"`
	Lowest           json.RawMessage   `json:"lowest,omitempty"`
}

type scanError struct {
	CID   string `json:"cid"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func main() {
	apiURL := os.Getenv("MAGICPRICE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("MAGICPRICE_API_KEY")

	s := server.NewMCPServer(
		"magicprice",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scanTool := mcp.NewTool("scan_prices",
		mcp.WithDescription("Scan a booking-site search results page across multiple affiliate CIDs and return the displayed room price for each, with the lowest price found. Uses a headless browser per variant; a full scan takes a few minutes."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The booking-site search results URL to scan"),
		),
		mcp.WithString("currency",
			mcp.Description("Explicit currency code to pin (e.g. 'KRW', 'USD'). Defaults to the URL's own currency or the server default."),
		),
	)
	s.AddTool(scanTool, handleScanPrices(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScanPrices(apiURL, apiKey string) server.ToolHandlerFunc {
	// A 20-variant scan at tens of seconds each needs a generous ceiling.
	client := &http.Client{Timeout: 15 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := scanRequest{
			URL:      url,
			Currency: request.GetString("currency", ""),
		}

		summary, err := runScan(ctx, client, apiURL, apiKey, reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal summary: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// runScan POSTs the scan request and folds the SSE stream into a summary.
func runScan(ctx context.Context, client *http.Client, apiURL, apiKey string, payload scanRequest) (*scanSummary, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/scan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}

	summary := &scanSummary{Results: []json.RawMessage{}}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ev scanEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "result":
			summary.Results = append(summary.Results, ev.Data)
		case "error":
			summary.Errors = append(summary.Errors, scanError{CID: ev.CID, Error: ev.Error, Code: ev.Code})
		case "complete":
			if ev.TotalResults != nil {
				summary.TotalResults = *ev.TotalResults
			}
			if ev.TotalPricesFound != nil {
				summary.TotalPricesFound = *ev.TotalPricesFound
			}
			summary.Lowest = ev.Lowest
			return summary, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event stream: %w", err)
	}
	return nil, fmt.Errorf("event stream ended without a complete event")
}
