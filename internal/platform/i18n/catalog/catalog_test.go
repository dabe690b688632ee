package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if bundle.HasLocale("fr-FR") {
		t.Fatal("unexpected locale fr-FR")
	}
}

func TestPrinterFormatsRegisteredMessages(t *testing.T) {
	if got := Printer("en-US").Sprintf("render.entity.not_found", "Rommel"); got != "**Rommel not found**" {
		t.Fatalf("en-US = %q", got)
	}
	if got := Printer("pt-BR").Sprintf("render.village.label", "Capital", "3200"); got != "[Capital] (3200 pontos)" {
		t.Fatalf("pt-BR = %q", got)
	}
	if got := Printer("not a locale").Sprintf("render.village.label", "Capital", "3200"); got != "[Capital] (3200 points)" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/render.yaml"), `locale: "en-US"
messages:
  "bridge.bad": "nope"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/render.yaml"), `locale: "pt-BR"
messages:
  "render.a": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/render.yaml"), `locale: "pt-BR"
messages:
  "render.a": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsIncompleteLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/render.yaml"), `locale: "en-US"
messages:
  "render.a": "a"
  "render.b": "b"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/render.yaml"), `locale: "pt-BR"
messages:
  "render.a": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing key error")
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
