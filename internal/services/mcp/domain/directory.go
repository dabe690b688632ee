package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerListInput represents the MCP tool input for listing servers.
type ServerListInput struct{}

// ServerListResult represents the MCP tool output for listing servers.
type ServerListResult struct {
	Servers []gamedata.Server `json:"servers" jsonschema:"known Tribal Wars market servers"`
}

// ServerListTool defines the MCP tool schema for listing servers.
func ServerListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_servers",
		Description: "Lists the Tribal Wars market servers with their codes and hosts.",
	}
}

// ServerListHandler executes a server list request.
func ServerListHandler(dir gamedata.Directory) mcp.ToolHandlerFor[ServerListInput, ServerListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ServerListInput) (*mcp.CallToolResult, ServerListResult, error) {
		servers, err := dir.Servers(ctx)
		if err != nil {
			return nil, ServerListResult{}, fmt.Errorf("list servers: %w", err)
		}
		if servers == nil {
			servers = []gamedata.Server{}
		}
		lines := make([]string, 0, len(servers))
		for _, server := range servers {
			lines = append(lines, server.Code+" "+server.Host)
		}
		return textResult(strings.Join(lines, "\n")), ServerListResult{Servers: servers}, nil
	}
}

// WorldListInput represents the MCP tool input for listing worlds.
type WorldListInput struct {
	Server string `json:"server" jsonschema:"server code, e.g. br"`
}

// WorldListResult represents the MCP tool output for listing worlds.
type WorldListResult struct {
	Server string           `json:"server" jsonschema:"server code"`
	Worlds []gamedata.World `json:"worlds" jsonschema:"open worlds on the server"`
}

// WorldListTool defines the MCP tool schema for listing worlds.
func WorldListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_worlds",
		Description: "Lists the open worlds of one Tribal Wars server.",
	}
}

// WorldListHandler executes a world list request.
func WorldListHandler(dir gamedata.Directory) mcp.ToolHandlerFor[WorldListInput, WorldListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldListInput) (*mcp.CallToolResult, WorldListResult, error) {
		server := strings.TrimSpace(input.Server)
		if server == "" {
			return nil, WorldListResult{}, apperrors.New(apperrors.CodeInvalidRequest, "server is required")
		}
		worlds, err := dir.Worlds(ctx, server)
		if err != nil {
			return nil, WorldListResult{}, fmt.Errorf("list worlds for %s: %w", server, err)
		}
		if worlds == nil {
			worlds = []gamedata.World{}
		}
		keys := make([]string, 0, len(worlds))
		for _, world := range worlds {
			keys = append(keys, world.Key)
		}
		return textResult(strings.Join(keys, "\n")), WorldListResult{Server: server, Worlds: worlds}, nil
	}
}
