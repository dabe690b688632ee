package bridge

import (
	"context"
	"flag"
	"testing"

	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8090" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":8091" {
		t.Fatalf("expected default grpc addr, got %q", cfg.GRPCAddr)
	}
	if cfg.DBPath != "data/twbb.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Strategy != "snapshot" {
		t.Fatalf("expected default strategy, got %q", cfg.Strategy)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("TWBB_HTTP_ADDR", "env-http")
	t.Setenv("TWBB_GRPC_ADDR", "env-grpc")
	t.Setenv("TWBB_API_TOKEN", "env-token")
	t.Setenv("TWBB_RESOLVER_STRATEGY", "directory")

	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-http",
		"-db-path", "flag.db",
		"-locale", "pt-BR",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != "env-grpc" {
		t.Fatalf("expected env grpc addr, got %q", cfg.GRPCAddr)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.APIToken != "env-token" {
		t.Fatalf("expected env api token, got %q", cfg.APIToken)
	}
	if cfg.Strategy != "directory" {
		t.Fatalf("expected env strategy, got %q", cfg.Strategy)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected flag locale, got %q", cfg.Locale)
	}
}

func TestRunRequiresRegistryCredentials(t *testing.T) {
	t.Setenv("TWBB_OTEL_ENDPOINT", "")
	t.Setenv("TWBB_DISCORD_APP_ID", "")
	t.Setenv("TWBB_DISCORD_TOKEN", "")
	cfg, err := ParseConfig(flag.NewFlagSet("bridge", flag.ContinueOnError), []string{"-db-path", t.TempDir() + "/twbb.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	err = Run(context.Background(), cfg)
	if apperrors.GetCode(err) != apperrors.CodeRegistryConfigMissing {
		t.Fatalf("run error = %v, want registry config missing", err)
	}
}
