package symbol

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultDiscordBaseURL is the Discord REST API root.
const DefaultDiscordBaseURL = "https://discord.com/api/v10"

var tracer = otel.Tracer("github.com/louisbranch/twbb/internal/symbol")

// Registry fetches the full emoji list.
type Registry interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(ctx context.Context) ([]Entry, error)

// Fetch implements Registry.
func (fn RegistryFunc) Fetch(ctx context.Context) ([]Entry, error) {
	return fn(ctx)
}

// DiscordRegistry reads the emojis uploaded to a Discord application.
type DiscordRegistry struct {
	baseURL string
	appID   string
	token   string
	client  *http.Client
}

type emojiListResponse struct {
	Items []Entry `json:"items"`
}

// NewDiscordRegistry creates a registry for the application appID
// authenticated with the bot token. Missing credentials are a configuration
// error. A nil client uses http.DefaultClient and an empty baseURL uses
// DefaultDiscordBaseURL.
func NewDiscordRegistry(baseURL, appID, token string, client *http.Client) (*DiscordRegistry, error) {
	appID = strings.TrimSpace(appID)
	token = strings.TrimSpace(token)
	if appID == "" || token == "" {
		return nil, apperrors.New(apperrors.CodeRegistryConfigMissing, "discord application id and bot token are required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultDiscordBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DiscordRegistry{
		baseURL: baseURL,
		appID:   appID,
		token:   token,
		client:  client,
	}, nil
}

// Fetch lists the application emojis.
func (r *DiscordRegistry) Fetch(ctx context.Context) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "symbol.discord.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("discord.app_id", r.appID))

	endpoint := r.baseURL + "/applications/" + url.PathEscape(r.appID) + "/emojis"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build emoji request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("emoji request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return nil, apperrors.New(apperrors.CodeUpstreamStatus, "emoji registry returned "+resp.Status)
	}

	var payload emojiListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.Wrap(apperrors.CodeUpstreamDecode, "decode emoji response", err)
	}
	span.SetAttributes(attribute.Int("symbol.count", len(payload.Items)))
	return payload.Items, nil
}
