package gamedata

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

// HostPlaceholder is the subdomain in a server host that stands for the world.
const HostPlaceholder = "www"

// ErrServerNotFound reports that no server in the directory has the code.
var ErrServerNotFound = apperrors.New(apperrors.CodeServerNotFound, "server not found")

// WorldContext scopes a resolution to one world on one regional server.
type WorldContext struct {
	// World is the world key, e.g. "pt104".
	World string
	// Server is the regional server code, e.g. "pt".
	Server string
}

// Validate reports whether both world and server are set.
func (wc WorldContext) Validate() error {
	if strings.TrimSpace(wc.World) == "" || strings.TrimSpace(wc.Server) == "" {
		return apperrors.WithMetadata(apperrors.CodeInvalidWorldContext, "world and server are required", map[string]string{
			"world":  wc.World,
			"server": wc.Server,
		})
	}
	return nil
}

// Server is one regional deployment in the directory.
type Server struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Host string `json:"host"`
}

// World is one game world on a server.
type World struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Open bool   `json:"open"`
}

// Directory lists servers and worlds.
type Directory interface {
	Servers(ctx context.Context) ([]Server, error)
	Worlds(ctx context.Context, server string) ([]World, error)
}

// HostResolver maps a world context to the physical host serving it.
type HostResolver interface {
	Host(ctx context.Context, wc WorldContext) (string, error)
}

// ResolveHost fetches the server list, finds wc.Server and substitutes the
// world into its host placeholder, e.g. www.tribalwars.com.pt becomes
// pt104.tribalwars.com.pt.
func ResolveHost(ctx context.Context, dir Directory, wc WorldContext) (string, error) {
	if err := wc.Validate(); err != nil {
		return "", err
	}
	servers, err := dir.Servers(ctx)
	if err != nil {
		return "", err
	}
	for _, server := range servers {
		if server.Code == wc.Server {
			return WorldHost(server.Host, wc.World), nil
		}
	}
	return "", apperrors.WithMetadata(ErrServerNotFound.Code, "server "+wc.Server+" not found", map[string]string{
		"server": wc.Server,
	})
}

// WorldHost substitutes world into the host placeholder.
func WorldHost(serverHost, world string) string {
	return strings.Replace(serverHost, HostPlaceholder, world, 1)
}
