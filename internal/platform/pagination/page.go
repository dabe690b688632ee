// Package pagination slices directory listings into pages addressed by an
// opaque offset token.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

const (
	// PageSizeParam is the query parameter carrying the requested page size.
	PageSizeParam = "page_size"
	// PageTokenParam is the query parameter carrying the next page token.
	PageTokenParam = "page_token"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Request is a normalized page request.
type Request struct {
	Size   int
	Offset int
}

// FromQuery reads page_size and page_token from query values.
func FromQuery(values url.Values, cfg PageSizeConfig) (Request, error) {
	size := 0
	if raw := strings.TrimSpace(values.Get(PageSizeParam)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Request{}, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid page_size", err)
		}
		size = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(values.Get(PageTokenParam)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return Request{}, apperrors.New(apperrors.CodeInvalidRequest, "invalid page_token")
		}
		offset = parsed
	}
	return Request{Size: ClampPageSize(size, cfg), Offset: offset}, nil
}

// Page is one slice of a listing. NextPageToken is empty on the last page.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// Slice returns the page of items selected by req. Items is never nil.
func Slice[T any](items []T, req Request) Page[T] {
	size := req.Size
	if size <= 0 {
		size = 1
	}
	start := min(max(req.Offset, 0), len(items))
	end := min(start+size, len(items))

	page := Page[T]{Items: make([]T, 0, end-start)}
	page.Items = append(page.Items, items[start:end]...)
	if end < len(items) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page
}
