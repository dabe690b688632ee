// Package linkfmt renders resolved entities as markdown links into the
// game's info screens.
package linkfmt

import (
	"context"
	"net/url"
	"strconv"

	"github.com/louisbranch/twbb/internal/entity"
	"github.com/louisbranch/twbb/internal/gamedata"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/platform/logging"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

const villageLabelKey = "render.village.label"

var screens = map[entity.Kind]string{
	entity.KindTribe:   "info_ally",
	entity.KindPlayer:  "info_player",
	entity.KindVillage: "info_village",
}

// Formatter builds info-screen URLs and link text.
type Formatter struct {
	hosts   gamedata.HostResolver
	printer *message.Printer
	logger  *zap.Logger
}

// New creates a Formatter. A nil printer uses the base locale.
func New(hosts gamedata.HostResolver, printer *message.Printer, logger *zap.Logger) *Formatter {
	if printer == nil {
		printer = catalog.Printer(catalog.BaseLocale)
	}
	return &Formatter{hosts: hosts, printer: printer, logger: logging.OrNop(logger)}
}

// URL returns the info-screen URL for the entity, or "" when the world host
// cannot be resolved or the kind has no screen.
func (f *Formatter) URL(ctx context.Context, kind entity.Kind, id int64, wc gamedata.WorldContext) string {
	screen, ok := screens[kind]
	if !ok {
		return ""
	}
	host, err := f.hosts.Host(ctx, wc)
	if err != nil {
		f.logger.Warn("resolve link host",
			zap.String("world", wc.World),
			zap.String("server", wc.Server),
			zap.Error(err),
		)
		return ""
	}
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/game.php",
		RawQuery: "screen=" + screen + "&id=" + strconv.FormatInt(id, 10),
	}
	return u.String()
}

// Format renders rec as "[label](url)" with the label printed by printer,
// or by the formatter's own printer when nil. It reports false when no URL
// could be built.
func (f *Formatter) Format(ctx context.Context, rec entity.Record, wc gamedata.WorldContext, printer *message.Printer) (string, bool) {
	link := f.URL(ctx, rec.Kind(), rec.ID(), wc)
	if link == "" {
		return "", false
	}
	return "[" + f.Label(rec, printer) + "](" + link + ")", true
}

// Label is the visible link text. Villages carry their points.
func (f *Formatter) Label(rec entity.Record, printer *message.Printer) string {
	v, ok := rec.(entity.Village)
	if !ok {
		return rec.Name()
	}
	if printer == nil {
		printer = f.printer
	}
	return printer.Sprintf(villageLabelKey, v.VillageName, strconv.FormatInt(v.Points, 10))
}
