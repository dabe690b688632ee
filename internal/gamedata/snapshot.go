package gamedata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SnapshotFile names one of the per-world map dumps.
type SnapshotFile string

const (
	SnapshotVillages SnapshotFile = "village.txt"
	SnapshotPlayers  SnapshotFile = "player.txt"
	SnapshotTribes   SnapshotFile = "ally.txt"
)

// Snapshots fetches a world's plaintext map dump.
type Snapshots interface {
	Fetch(ctx context.Context, host string, file SnapshotFile) (io.ReadCloser, error)
}

// HTTPSnapshots downloads dumps from {scheme}://{host}/map/{file}.
type HTTPSnapshots struct {
	scheme string
	client *http.Client
}

// NewHTTPSnapshots creates a snapshot fetcher. An empty scheme means https;
// a nil client uses http.DefaultClient.
func NewHTTPSnapshots(scheme string, client *http.Client) *HTTPSnapshots {
	scheme = strings.TrimSpace(scheme)
	if scheme == "" {
		scheme = "https"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSnapshots{scheme: scheme, client: client}
}

// Fetch returns the dump body. The caller closes it.
func (s *HTTPSnapshots) Fetch(ctx context.Context, host string, file SnapshotFile) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "snapshot.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("snapshot.host", host),
		attribute.String("snapshot.file", string(file)),
	)

	if strings.TrimSpace(host) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "snapshot host is required")
	}
	endpoint := s.scheme + "://" + host + "/map/" + string(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		span.SetStatus(codes.Error, resp.Status)
		return nil, apperrors.New(apperrors.CodeUpstreamStatus, "snapshot "+string(file)+" returned "+resp.Status)
	}
	return resp.Body, nil
}
