package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"github.com/louisbranch/twbb/internal/services/bridge/storage"
	"github.com/louisbranch/twbb/internal/services/shared/i18nhttp"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 20
	maxDecodeErrorsPerConn = 3

	frameRender       = "render"
	frameRenderResult = "render.result"
	frameRenderError  = "render.error"
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// connGone reports whether a decode error came from the connection rather
// than from malformed JSON. Nothing can be written back in that case.
func connGone(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return true
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return false
	}
	return true
}

func (h *handler) handleWSConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	request := conn.Request()
	ctx := request.Context()
	decoder := json.NewDecoder(conn)
	peer := &wsPeer{encoder: json.NewEncoder(conn)}

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if connGone(err) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "", apperrors.CodeInvalidRequest, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			// The decoder cannot resync after a syntax error.
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidRequest, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidRequest, "rate limit exceeded")
			return
		}

		if frame.Type != frameRender {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidRequest, "unsupported frame type")
			continue
		}

		var req renderRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidRequest, "invalid render payload")
			continue
		}
		printer := i18nhttp.Printer(request, firstNonEmpty(req.Locale, h.locale))
		resp, err := h.render(ctx, req, printer)
		if err != nil {
			code, msg := errorDetails(err)
			if errors.Is(err, storage.ErrNotFound) {
				msg = printer.Sprintf(unboundKey)
			}
			h.deps.Logger.Debug("ws render failed", zap.String("request_id", frame.RequestID), zap.Error(err))
			_ = writeWSError(peer, frame.RequestID, code, msg)
			continue
		}
		if err := peer.writeFrame(wsFrame{Type: frameRenderResult, RequestID: frame.RequestID, Payload: mustJSON(resp)}); err != nil {
			return
		}
	}
}

func writeWSError(peer *wsPeer, requestID string, code apperrors.Code, msg string) error {
	return peer.writeFrame(wsFrame{
		Type:      frameRenderError,
		RequestID: requestID,
		Payload:   mustJSON(errorEnvelope{Error: errorBody{Code: string(code), Message: msg}}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
