package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/louisbranch/twbb/internal/gamedata"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"github.com/louisbranch/twbb/internal/platform/pagination"
	"github.com/louisbranch/twbb/internal/render"
	"github.com/louisbranch/twbb/internal/services/bridge/storage"
	"github.com/louisbranch/twbb/internal/services/shared/authctx"
	"github.com/louisbranch/twbb/internal/services/shared/i18nhttp"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
	"golang.org/x/text/message"
)

const (
	maxRequestBodyBytes = 64 * 1024
	maxContentRunes     = 4000

	unboundKey = "bridge.channel.unbound"
	boundKey   = "bridge.channel.bound"
)

var listPageSize = pagination.PageSizeConfig{Default: 100, Max: 500}

type serverListResponse struct {
	Servers       []gamedata.Server `json:"servers"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type worldListResponse struct {
	Worlds        []gamedata.World `json:"worlds"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

type renderRequest struct {
	Content   string `json:"content"`
	ChannelID string `json:"channel_id,omitempty"`
	World     string `json:"world,omitempty"`
	Server    string `json:"server,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

type renderResponse struct {
	Content string `json:"content"`
	World   string `json:"world"`
	Server  string `json:"server"`
}

type bindingRequest struct {
	World  string `json:"world"`
	Server string `json:"server"`
}

type bindingResponse struct {
	ChannelID string `json:"channel_id"`
	World     string `json:"world"`
	Server    string `json:"server"`
	UpdatedAt string `json:"updated_at"`
	Message   string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type reloadResponse struct {
	Status string `json:"status"`
}

type handler struct {
	deps   Dependencies
	locale string
}

// NewHandler creates bridge routes without token protection, for tests and
// local use.
func NewHandler(deps Dependencies) http.Handler {
	return newHandler(deps, "", "")
}

func newHandler(deps Dependencies, apiToken, locale string) http.Handler {
	deps.Logger = logging.OrNop(deps.Logger)
	h := &handler{deps: deps, locale: locale}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("POST /render", h.handleRender)
	mux.Handle("GET /ws", websocket.Handler(h.handleWSConn))
	mux.HandleFunc("GET /servers", h.handleServers)
	mux.HandleFunc("GET /servers/{code}/worlds", h.handleWorlds)
	mux.HandleFunc("GET /channels/{id}/binding", h.handleGetBinding)
	mux.Handle("PUT /channels/{id}/binding", authctx.RequireToken(apiToken, http.HandlerFunc(h.handlePutBinding)))
	mux.Handle("DELETE /channels/{id}/binding", authctx.RequireToken(apiToken, http.HandlerFunc(h.handleDeleteBinding)))
	mux.Handle("POST /symbols/reload", authctx.RequireToken(apiToken, http.HandlerFunc(h.handleReload)))
	return mux
}

func (h *handler) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	printer := i18nhttp.Printer(r, firstNonEmpty(req.Locale, h.locale))
	resp, err := h.render(r.Context(), req, printer)
	if err != nil {
		h.writeLocalizedError(w, err, printer)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// render resolves the world context for req and renders its content.
func (h *handler) render(ctx context.Context, req renderRequest, printer *message.Printer) (renderResponse, error) {
	if len([]rune(req.Content)) > maxContentRunes {
		return renderResponse{}, apperrors.New(apperrors.CodeInvalidRequest, "content is too long")
	}
	wc, err := h.worldContext(ctx, req)
	if err != nil {
		return renderResponse{}, err
	}
	content := req.Content
	if render.HasTags(content) {
		content = h.deps.Renderer.Render(ctx, content, wc, printer)
	}
	return renderResponse{Content: content, World: wc.World, Server: wc.Server}, nil
}

func (h *handler) worldContext(ctx context.Context, req renderRequest) (gamedata.WorldContext, error) {
	if channelID := strings.TrimSpace(req.ChannelID); channelID != "" {
		binding, err := h.deps.Bindings.GetBinding(ctx, channelID)
		if err != nil {
			return gamedata.WorldContext{}, err
		}
		return gamedata.WorldContext{World: binding.World, Server: binding.Server}, nil
	}
	wc := gamedata.WorldContext{World: strings.TrimSpace(req.World), Server: strings.TrimSpace(req.Server)}
	if err := wc.Validate(); err != nil {
		return gamedata.WorldContext{}, err
	}
	return wc, nil
}

func (h *handler) handleServers(w http.ResponseWriter, r *http.Request) {
	if h.deps.Directory == nil {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "directory is not configured"))
		return
	}
	req, err := pagination.FromQuery(r.URL.Query(), listPageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	servers, err := h.deps.Directory.Servers(r.Context())
	if err != nil {
		h.deps.Logger.Warn("list servers", zap.Error(err))
		writeError(w, err)
		return
	}
	page := pagination.Slice(servers, req)
	writeJSON(w, http.StatusOK, serverListResponse{Servers: page.Items, NextPageToken: page.NextPageToken})
}

func (h *handler) handleWorlds(w http.ResponseWriter, r *http.Request) {
	if h.deps.Directory == nil {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "directory is not configured"))
		return
	}
	req, err := pagination.FromQuery(r.URL.Query(), listPageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	worlds, err := h.deps.Directory.Worlds(r.Context(), r.PathValue("code"))
	if err != nil {
		h.deps.Logger.Warn("list worlds", zap.String("server", r.PathValue("code")), zap.Error(err))
		writeError(w, err)
		return
	}
	page := pagination.Slice(worlds, req)
	writeJSON(w, http.StatusOK, worldListResponse{Worlds: page.Items, NextPageToken: page.NextPageToken})
}

func (h *handler) handleGetBinding(w http.ResponseWriter, r *http.Request) {
	binding, err := h.deps.Bindings.GetBinding(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeLocalizedError(w, err, i18nhttp.Printer(r, h.locale))
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(binding, ""))
}

func (h *handler) handlePutBinding(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	wc := gamedata.WorldContext{World: strings.TrimSpace(req.World), Server: strings.TrimSpace(req.Server)}
	if err := wc.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkWorldOpen(r.Context(), wc); err != nil {
		writeError(w, err)
		return
	}

	binding := storage.Binding{ChannelID: r.PathValue("id"), World: wc.World, Server: wc.Server, UpdatedAt: time.Now().UTC()}
	if err := h.deps.Bindings.PutBinding(r.Context(), binding); err != nil {
		h.deps.Logger.Warn("put binding", zap.String("channel_id", binding.ChannelID), zap.Error(err))
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "save binding", err))
		return
	}
	printer := i18nhttp.Printer(r, h.locale)
	writeJSON(w, http.StatusOK, toBindingResponse(binding, printer.Sprintf(boundKey, wc.World, wc.Server)))
}

// checkWorldOpen confirms the world is listed as open on the server. Without
// a directory the binding is accepted as given.
func (h *handler) checkWorldOpen(ctx context.Context, wc gamedata.WorldContext) error {
	if h.deps.Directory == nil {
		return nil
	}
	worlds, err := h.deps.Directory.Worlds(ctx, wc.Server)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(worlds, func(world gamedata.World) bool { return world.Key == wc.World }) {
		return apperrors.WithMetadata(apperrors.CodeInvalidWorldContext, "world "+wc.World+" is not open on "+wc.Server, map[string]string{
			"world":  wc.World,
			"server": wc.Server,
		})
	}
	return nil
}

func (h *handler) handleDeleteBinding(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("id")
	if err := h.deps.Bindings.DeleteBinding(r.Context(), channelID); err != nil {
		h.deps.Logger.Warn("delete binding", zap.String("channel_id", channelID), zap.Error(err))
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "delete binding", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.deps.Symbols == nil {
		writeError(w, apperrors.New(apperrors.CodeRegistryConfigMissing, "symbol registry is not configured"))
		return
	}
	if err := h.deps.Symbols.Load(r.Context(), true); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded"})
}

// writeLocalizedError replaces the message of an unbound channel with the
// localized prompt users see in chat.
func (h *handler) writeLocalizedError(w http.ResponseWriter, err error, printer *message.Printer) {
	if errors.Is(err, storage.ErrNotFound) {
		writeErrorMessage(w, apperrors.CodeBindingNotFound, printer.Sprintf(unboundKey))
		return
	}
	writeError(w, err)
}

func toBindingResponse(binding storage.Binding, msg string) bindingResponse {
	return bindingResponse{
		ChannelID: strings.TrimSpace(binding.ChannelID),
		World:     binding.World,
		Server:    binding.Server,
		UpdatedAt: binding.UpdatedAt.UTC().Format(time.RFC3339),
		Message:   msg,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request body", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := errorDetails(err)
	writeErrorMessage(w, code, msg)
}

// errorDetails hides messages of errors without a domain code.
func errorDetails(err error) (apperrors.Code, string) {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return code, "internal error"
	}
	return code, err.Error()
}

func writeErrorMessage(w http.ResponseWriter, code apperrors.Code, msg string) {
	writeJSON(w, code.HTTPStatus(), errorEnvelope{Error: errorBody{Code: string(code), Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
