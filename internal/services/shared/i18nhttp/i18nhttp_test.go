package i18nhttp

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestResolveTagFromQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "http://example.com/render?lang=pt-BR", nil)
	if tag := ResolveTag(req, ""); tag != language.BrazilianPortuguese {
		t.Fatalf("tag = %v, want %v", tag, language.BrazilianPortuguese)
	}
}

func TestResolveTagFromAcceptLanguage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "http://example.com/render", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")
	if tag := ResolveTag(req, ""); tag != language.BrazilianPortuguese {
		t.Fatalf("tag = %v, want %v", tag, language.BrazilianPortuguese)
	}
}

func TestResolveTagFallbackWins(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "http://example.com/render?lang=en-US", nil)
	if tag := ResolveTag(req, "pt-BR"); tag != language.BrazilianPortuguese {
		t.Fatalf("tag = %v, want %v", tag, language.BrazilianPortuguese)
	}
}

func TestResolveTagDefaults(t *testing.T) {
	t.Parallel()

	if tag := ResolveTag(nil, "klingon"); tag != language.AmericanEnglish {
		t.Fatalf("tag = %v, want %v", tag, language.AmericanEnglish)
	}
}

func TestPrinterUsesResolvedLocale(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "http://example.com/render?lang=pt-BR", nil)
	got := Printer(req, "").Sprintf("render.entity.not_found", "Rommel")
	if got != "**Rommel não encontrado**" {
		t.Fatalf("Sprintf = %q", got)
	}
}
