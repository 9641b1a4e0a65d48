package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type researchArgs struct {
	Topic string `json:"topic" jsonschema:"the topic to research and summarize"`
}

type researchResult struct {
	Report string   `json:"report"`
	Logs   []string `json:"logs"`
}

// NewMCPServer exposes the research pipeline as the run_research MCP tool.
func NewMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "research-stream",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_research",
		Description: "Search the web for a topic and return a Markdown briefing with executive summary, key findings and conclusion.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args researchArgs) (*mcp.CallToolResult, researchResult, error) {
		if strings.TrimSpace(args.Topic) == "" {
			return nil, researchResult{}, errors.New("topic is required")
		}

		state, err := svc.Research(ctx, args.Topic)
		if err != nil {
			return nil, researchResult{}, fmt.Errorf("research failed: %w", err)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: state.FinalReport}},
		}, researchResult{Report: state.FinalReport, Logs: state.Logs}, nil
	})

	return server
}

// NewMCPHandler serves the MCP server over streamable HTTP.
func NewMCPHandler(svc *Service) http.Handler {
	server := NewMCPServer(svc)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
