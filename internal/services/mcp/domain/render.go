package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/message"
)

// Renderer substitutes the BBCode tags in content for one world context.
type Renderer interface {
	Render(ctx context.Context, content string, wc gamedata.WorldContext, printer *message.Printer) string
}

// RenderInput represents the MCP tool input for rendering a message.
type RenderInput struct {
	Content string `json:"content" jsonschema:"message text containing BBCode tags"`
	World   string `json:"world" jsonschema:"world key, e.g. br130"`
	Server  string `json:"server" jsonschema:"server code, e.g. br"`
	Locale  string `json:"locale,omitempty" jsonschema:"optional locale for fallback text, e.g. pt-BR"`
}

// RenderResult represents the MCP tool output for rendering a message.
type RenderResult struct {
	Content string `json:"content" jsonschema:"message with tags replaced by links and emoji"`
	World   string `json:"world" jsonschema:"world key used for resolution"`
	Server  string `json:"server" jsonschema:"server code used for resolution"`
}

// RenderTool defines the MCP tool schema for rendering a message.
func RenderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "render_bbcode",
		Description: "Replaces Tribal Wars BBCode tags ([coord], [player], [ally], [unit], [building], [command], [b], [i], [u]) with markdown links, emoji and styles.",
	}
}

// RenderHandler executes a render request. defaultLocale applies when the
// input does not name one.
func RenderHandler(renderer Renderer, defaultLocale string) mcp.ToolHandlerFor[RenderInput, RenderResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderResult, error) {
		wc := gamedata.WorldContext{
			World:  strings.TrimSpace(input.World),
			Server: strings.TrimSpace(input.Server),
		}
		if err := wc.Validate(); err != nil {
			return nil, RenderResult{}, fmt.Errorf("render: %w", err)
		}
		locale := strings.TrimSpace(input.Locale)
		if locale == "" {
			locale = defaultLocale
		}

		result := RenderResult{
			Content: renderer.Render(ctx, input.Content, wc, catalog.Printer(locale)),
			World:   wc.World,
			Server:  wc.Server,
		}
		return textResult(result.Content), result, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
