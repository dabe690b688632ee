package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/twbb/internal/bbcode"
	"github.com/louisbranch/twbb/internal/gamedata"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"github.com/louisbranch/twbb/internal/symbol"
)

func TestNewRequiresRegistryCredentials(t *testing.T) {
	_, err := New(Config{})
	if apperrors.GetCode(err) != apperrors.CodeRegistryConfigMissing {
		t.Fatalf("New() error = %v, want registry config missing", err)
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	_, err := New(Config{Strategy: "guess", DiscordAppID: "app", DiscordToken: "token"})
	if err == nil {
		t.Fatal("New() error = nil, want unknown strategy error")
	}
}

func TestPipelineRendersEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v2/versions":
			io.WriteString(w, `{"data":[{"code":"pt","name":"Portugal","host":"www.`+r.Host+`"}]}`)
		case strings.HasSuffix(r.URL.Path, "/players"):
			io.WriteString(w, `{"data":[{"id":11,"name":"Rommel"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	p, err := New(Config{
		TWHelpBaseURL: srv.URL,
		Strategy:      "directory",
		HTTPClient:    srv.Client(),
		Registry: symbol.RegistryFunc(func(context.Context) ([]symbol.Entry, error) {
			return []symbol.Entry{{ID: "9", Name: "unit_axe"}}, nil
		}),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	host := strings.TrimPrefix(srv.URL, "http://")
	got := p.Renderer.Render(context.Background(), "[player]Rommel[/player] [unit]axe[/unit]", gamedata.WorldContext{World: "pt104", Server: "pt"})
	want := "[Rommel](https://pt104." + host + "/game.php?screen=info_player&id=11) <:unit_axe:9>"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRendererForLocalizes(t *testing.T) {
	p, err := New(Config{
		Registry: symbol.RegistryFunc(func(context.Context) ([]symbol.Entry, error) { return nil, nil }),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.RendererFor(nil) != p.Renderer {
		t.Fatal("RendererFor(nil) should return the default renderer")
	}
	got := p.RendererFor(catalog.Printer("pt-BR")).Pass(context.Background(), "[player]Ghost[/player]", bbcode.KindPlayer, gamedata.WorldContext{})
	if got != "**Ghost não encontrado**" {
		t.Fatalf("Pass(player) = %q", got)
	}
}
