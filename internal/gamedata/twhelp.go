package gamedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultTWHelpBaseURL is the public twhelp deployment.
const DefaultTWHelpBaseURL = "https://twhelp.app"

const directoryLimit = "500"

var tracer = otel.Tracer("github.com/louisbranch/twbb/internal/gamedata")

// PlayerResult is a player row from the directory search.
type PlayerResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Points *int64 `json:"points,omitempty"`
	Rank   *int64 `json:"rank,omitempty"`
}

// TribeResult is a tribe row from the directory search.
type TribeResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
	Points *int64 `json:"points,omitempty"`
	Rank   *int64 `json:"rank,omitempty"`
}

// VillageResult is a village row from the directory search.
type VillageResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Points int64  `json:"points"`
}

// TWHelp is a client for the twhelp v2 API.
type TWHelp struct {
	baseURL string
	client  *http.Client
}

// NewTWHelp creates a client rooted at baseURL. A nil client uses
// http.DefaultClient and an empty baseURL uses DefaultTWHelpBaseURL.
func NewTWHelp(baseURL string, client *http.Client) *TWHelp {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultTWHelpBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &TWHelp{baseURL: baseURL, client: client}
}

// Servers lists every regional server.
func (c *TWHelp) Servers(ctx context.Context) ([]Server, error) {
	var servers []Server
	query := url.Values{"limit": {directoryLimit}}
	if err := c.get(ctx, "directory.servers", "/api/v2/versions", query, &servers); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return servers, nil
}

// Worlds lists the open worlds on server.
func (c *TWHelp) Worlds(ctx context.Context, server string) ([]World, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "server is required")
	}
	var worlds []World
	query := url.Values{"limit": {directoryLimit}, "open": {"true"}}
	if err := c.get(ctx, "directory.worlds", "/api/v2/versions/"+url.PathEscape(server)+"/servers", query, &worlds); err != nil {
		return nil, fmt.Errorf("list worlds for %s: %w", server, err)
	}
	return worlds, nil
}

// Host implements HostResolver.
func (c *TWHelp) Host(ctx context.Context, wc WorldContext) (string, error) {
	return ResolveHost(ctx, c, wc)
}

// FindPlayer searches players by name. The first result wins.
func (c *TWHelp) FindPlayer(ctx context.Context, wc WorldContext, name string) (PlayerResult, bool, error) {
	var rows []PlayerResult
	if err := c.search(ctx, wc, "players", url.Values{"q": {name}}, &rows); err != nil {
		return PlayerResult{}, false, err
	}
	if len(rows) == 0 {
		return PlayerResult{}, false, nil
	}
	return rows[0], true, nil
}

// FindTribe searches tribes by tag. The first result wins.
func (c *TWHelp) FindTribe(ctx context.Context, wc WorldContext, tag string) (TribeResult, bool, error) {
	var rows []TribeResult
	if err := c.search(ctx, wc, "tribes", url.Values{"tag": {tag}}, &rows); err != nil {
		return TribeResult{}, false, err
	}
	if len(rows) == 0 {
		return TribeResult{}, false, nil
	}
	return rows[0], true, nil
}

// FindVillage searches villages by exact coordinates.
func (c *TWHelp) FindVillage(ctx context.Context, wc WorldContext, x, y int) (VillageResult, bool, error) {
	var rows []VillageResult
	coords := strconv.Itoa(x) + "|" + strconv.Itoa(y)
	if err := c.search(ctx, wc, "villages", url.Values{"coords": {coords}}, &rows); err != nil {
		return VillageResult{}, false, err
	}
	if len(rows) == 0 {
		return VillageResult{}, false, nil
	}
	return rows[0], true, nil
}

func (c *TWHelp) search(ctx context.Context, wc WorldContext, resource string, query url.Values, out any) error {
	if err := wc.Validate(); err != nil {
		return err
	}
	query.Set("limit", "1")
	path := "/api/v2/versions/" + url.PathEscape(wc.Server) + "/servers/" + url.PathEscape(wc.World) + "/" + resource
	if err := c.get(ctx, "directory.search."+resource, path, query, out); err != nil {
		return fmt.Errorf("search %s: %w", resource, err)
	}
	return nil
}

// get issues one GET and decodes the "data" member of the response into out.
func (c *TWHelp) get(ctx context.Context, spanName, path string, query url.Values, out any) error {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	span.SetAttributes(attribute.String("http.url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return apperrors.New(apperrors.CodeUpstreamStatus, "twhelp returned "+resp.Status)
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return apperrors.Wrap(apperrors.CodeUpstreamDecode, "decode twhelp response", err)
	}
	return nil
}
