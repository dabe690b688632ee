// Package render rewrites chat BBCode into Discord markdown.
//
// Passes run in a fixed order: coordinates, players, tribes, units,
// buildings, commands, then styles. Within a pass occurrences are resolved
// one at a time, left to right, and spliced back by position.
package render

import (
	"context"
	"strings"

	"github.com/louisbranch/twbb/internal/bbcode"
	"github.com/louisbranch/twbb/internal/entity"
	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

const notFoundKey = "render.entity.not_found"

var tracer = otel.Tracer("github.com/louisbranch/twbb/internal/render")

var styleMarkup = map[bbcode.Kind]string{
	bbcode.KindBold:      "**",
	bbcode.KindItalic:    "*",
	bbcode.KindUnderline: "__",
}

// EntityResolver resolves entity references within a world.
type EntityResolver interface {
	Resolve(ctx context.Context, kind entity.Kind, reference string, wc gamedata.WorldContext) (entity.Record, bool)
}

// SymbolResolver maps symbol tags to display tokens.
type SymbolResolver interface {
	Ensure(ctx context.Context)
	Resolve(kind bbcode.Kind, body string) (string, bool)
}

// LinkFormatter renders resolved entities. Link text is localized with
// printer.
type LinkFormatter interface {
	Format(ctx context.Context, rec entity.Record, wc gamedata.WorldContext, printer *message.Printer) (string, bool)
}

// Config wires a Renderer.
type Config struct {
	Entities EntityResolver
	Symbols  SymbolResolver
	Links    LinkFormatter
	// Printer localizes fallbacks and link labels. Nil uses the base locale.
	Printer *message.Printer
	Logger  *zap.Logger
}

// Renderer runs the substitution passes. It keeps no per-call state.
type Renderer struct {
	entities EntityResolver
	symbols  SymbolResolver
	links    LinkFormatter
	printer  *message.Printer
	logger   *zap.Logger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	printer := cfg.Printer
	if printer == nil {
		printer = catalog.Printer(catalog.BaseLocale)
	}
	return &Renderer{
		entities: cfg.Entities,
		symbols:  cfg.Symbols,
		links:    cfg.Links,
		printer:  printer,
		logger:   logging.OrNop(cfg.Logger),
	}
}

// WithPrinter returns a copy of r that localizes fallbacks and link labels
// with printer.
func (r *Renderer) WithPrinter(printer *message.Printer) *Renderer {
	clone := *r
	if printer != nil {
		clone.printer = printer
	}
	return &clone
}

// Render runs every pass over content.
func (r *Renderer) Render(ctx context.Context, content string, wc gamedata.WorldContext) string {
	ctx, span := tracer.Start(ctx, "render")
	defer span.End()
	span.SetAttributes(attribute.String("world", wc.World), attribute.String("server", wc.Server))

	for _, kind := range bbcode.Kinds {
		content = r.Pass(ctx, content, kind, wc)
	}
	return content
}

// Pass runs the single pass for kind over content. Entity kinds resolve and
// link, symbol kinds map to emoji, and style kinds become markdown emphasis.
func (r *Renderer) Pass(ctx context.Context, content string, kind bbcode.Kind, wc gamedata.WorldContext) string {
	switch {
	case kind.IsEntity():
		return r.entityPass(ctx, content, kind, wc)
	case kind.IsSymbol():
		return r.symbolPass(ctx, content, kind)
	case kind.IsStyle():
		return stylePass(content, kind)
	}
	return content
}

func stylePass(content string, kind bbcode.Kind) string {
	markup := styleMarkup[kind]
	var replacements []bbcode.Replacement
	for occ := range bbcode.Scan(content, kind) {
		replacements = append(replacements, bbcode.Replacement{
			Start: occ.Start,
			End:   occ.End,
			Text:  markup + occ.Reference + markup,
		})
	}
	return bbcode.Splice(content, replacements)
}

func (r *Renderer) entityPass(ctx context.Context, content string, tag bbcode.Kind, wc gamedata.WorldContext) string {
	occurrences := bbcode.Collect(content, tag)
	if len(occurrences) == 0 {
		return content
	}
	kind, _ := entity.KindForTag(tag)

	ctx, span := tracer.Start(ctx, "render.pass."+string(tag))
	defer span.End()
	span.SetAttributes(attribute.Int("occurrences", len(occurrences)))

	replacements := make([]bbcode.Replacement, 0, len(occurrences))
	for _, occ := range occurrences {
		text, ok := r.renderEntity(ctx, kind, occ.Reference, wc)
		if !ok {
			text = r.printer.Sprintf(notFoundKey, occ.Reference)
		}
		replacements = append(replacements, bbcode.Replacement{Start: occ.Start, End: occ.End, Text: text})
	}
	return bbcode.Splice(content, replacements)
}

func (r *Renderer) renderEntity(ctx context.Context, kind entity.Kind, reference string, wc gamedata.WorldContext) (string, bool) {
	if r.entities == nil || r.links == nil {
		return "", false
	}
	rec, ok := r.entities.Resolve(ctx, kind, reference, wc)
	if !ok {
		return "", false
	}
	return r.links.Format(ctx, rec, wc, r.printer)
}

func (r *Renderer) symbolPass(ctx context.Context, content string, tag bbcode.Kind) string {
	occurrences := bbcode.Collect(content, tag)
	if len(occurrences) == 0 || r.symbols == nil {
		return content
	}

	ctx, span := tracer.Start(ctx, "render.pass."+string(tag))
	defer span.End()
	span.SetAttributes(attribute.Int("occurrences", len(occurrences)))

	r.symbols.Ensure(ctx)
	replacements := make([]bbcode.Replacement, 0, len(occurrences))
	missed := 0
	for _, occ := range occurrences {
		token, ok := r.symbols.Resolve(tag, occ.Reference)
		if !ok {
			missed++
			continue
		}
		replacements = append(replacements, bbcode.Replacement{Start: occ.Start, End: occ.End, Text: token})
	}
	if missed > 0 {
		r.logger.Debug("symbols not found", zap.String("kind", string(tag)), zap.Int("missed", missed))
	}
	return bbcode.Splice(content, replacements)
}

// HasTags reports whether content contains any supported opening tag.
func HasTags(content string) bool {
	for _, kind := range bbcode.Kinds {
		if strings.Contains(content, kind.Open()) {
			return true
		}
	}
	return false
}
