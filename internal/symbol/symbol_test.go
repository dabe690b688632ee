package symbol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/louisbranch/twbb/internal/bbcode"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

func staticRegistry(entries ...Entry) Registry {
	return RegistryFunc(func(context.Context) ([]Entry, error) {
		return entries, nil
	})
}

func TestKeyAppliesPrefixAndNormalizes(t *testing.T) {
	tests := []struct {
		kind bbcode.Kind
		body string
		want string
	}{
		{bbcode.KindUnit, " Spear ", "unit_spear"},
		{bbcode.KindBuilding, "MAIN", "build_main"},
		{bbcode.KindCommand, "Attack", "attack"},
	}
	for _, tt := range tests {
		if got := Key(tt.kind, tt.body); got != tt.want {
			t.Fatalf("Key(%s, %q) = %q, want %q", tt.kind, tt.body, got, tt.want)
		}
	}
}

func TestNewTableRejectsMalformedEntries(t *testing.T) {
	if _, err := NewTable([]Entry{{ID: "1", Name: "unit_spear"}, {ID: "", Name: "unit_axe"}}); err == nil {
		t.Fatal("expected error for entry without id")
	}
	if _, err := NewTable([]Entry{{ID: "1", Name: " "}}); err == nil {
		t.Fatal("expected error for entry without name")
	}
}

func TestResolverLazyLoadAndResolve(t *testing.T) {
	calls := 0
	registry := RegistryFunc(func(context.Context) ([]Entry, error) {
		calls++
		return []Entry{
			{ID: "111", Name: "unit_spear"},
			{ID: "222", Name: "build_main"},
			{ID: "333", Name: "attack"},
		}, nil
	})
	r := NewResolver(registry, nil)

	if _, ok := r.Resolve(bbcode.KindUnit, "spear"); ok {
		t.Fatal("expected miss before load")
	}
	r.Ensure(context.Background())
	r.Ensure(context.Background())
	if calls != 1 {
		t.Fatalf("registry calls = %d, want 1", calls)
	}

	tests := []struct {
		kind bbcode.Kind
		body string
		want string
	}{
		{bbcode.KindUnit, "Spear", "<:unit_spear:111>"},
		{bbcode.KindBuilding, " main ", "<:build_main:222>"},
		{bbcode.KindCommand, "ATTACK", "<:attack:333>"},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.kind, tt.body)
		if !ok || got != tt.want {
			t.Fatalf("Resolve(%s, %q) = %q, %v; want %q", tt.kind, tt.body, got, ok, tt.want)
		}
	}
	if _, ok := r.Resolve(bbcode.KindBuilding, "spear"); ok {
		t.Fatal("expected building prefix to miss a unit symbol")
	}
}

func TestResolverForceReloadReplacesSnapshot(t *testing.T) {
	version := "1"
	r := NewResolver(RegistryFunc(func(context.Context) ([]Entry, error) {
		return []Entry{{ID: version, Name: "unit_axe"}}, nil
	}), nil)

	if err := r.Load(context.Background(), false); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := r.Table()
	version = "2"
	if err := r.Load(context.Background(), false); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, _ := r.Resolve(bbcode.KindUnit, "axe"); got != "<:unit_axe:1>" {
		t.Fatalf("unforced load changed table: %q", got)
	}
	if err := r.Load(context.Background(), true); err != nil {
		t.Fatalf("forced load: %v", err)
	}
	if got, _ := r.Resolve(bbcode.KindUnit, "axe"); got != "<:unit_axe:2>" {
		t.Fatalf("forced load kept old table: %q", got)
	}
	if id, _ := before.Lookup("unit_axe"); id != "1" {
		t.Fatalf("old snapshot mutated: %q", id)
	}
}

func TestResolverFailedLoadLeavesEmptyTable(t *testing.T) {
	fail := false
	r := NewResolver(RegistryFunc(func(context.Context) ([]Entry, error) {
		if fail {
			return nil, errors.New("registry down")
		}
		return []Entry{{ID: "9", Name: "unit_ram"}}, nil
	}), nil)
	r.Ensure(context.Background())
	if r.Table().Len() != 1 {
		t.Fatalf("table len = %d, want 1", r.Table().Len())
	}

	fail = true
	if err := r.Load(context.Background(), true); err == nil {
		t.Fatal("expected load error")
	}
	if r.Table().Len() != 0 {
		t.Fatalf("table len = %d, want 0", r.Table().Len())
	}
	if _, ok := r.Resolve(bbcode.KindUnit, "ram"); ok {
		t.Fatal("expected miss after failed load")
	}
}

func TestResolverMalformedEntriesLeaveEmptyTable(t *testing.T) {
	r := NewResolver(staticRegistry(Entry{ID: "1", Name: "unit_spear"}, Entry{Name: "unit_axe"}), nil)
	if err := r.Load(context.Background(), false); err == nil {
		t.Fatal("expected malformed entry error")
	}
	if r.Table().Len() != 0 {
		t.Fatalf("table len = %d, want 0", r.Table().Len())
	}
}

func TestResolverConcurrentReadsDuringReload(t *testing.T) {
	r := NewResolver(staticRegistry(Entry{ID: "1", Name: "unit_spy"}), nil)
	r.Ensure(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, ok := r.Resolve(bbcode.KindUnit, "spy"); !ok {
				t.Error("expected hit during reload")
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.Load(context.Background(), true)
		}()
	}
	wg.Wait()
}

func TestNewDiscordRegistryRequiresCredentials(t *testing.T) {
	_, err := NewDiscordRegistry("", "", "token", nil)
	if !errors.Is(err, apperrors.New(apperrors.CodeRegistryConfigMissing, "")) {
		t.Fatalf("err = %v, want registry config error", err)
	}
	if _, err := NewDiscordRegistry("", "app", " ", nil); err == nil {
		t.Fatal("expected missing token error")
	}
}

func TestDiscordRegistryFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/applications/app-1/emojis" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bot secret")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "111", "name": "unit_spear", "animated": false},
				{"id": "222", "name": "build_main"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	registry, err := NewDiscordRegistry(srv.URL+"/", "app-1", "secret", srv.Client())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	entries, err := registry.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 2 || entries[0] != (Entry{ID: "111", Name: "unit_spear"}) {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestDiscordRegistryFetchNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	registry, err := NewDiscordRegistry(srv.URL, "app-1", "bad", srv.Client())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	_, err = registry.Fetch(context.Background())
	if apperrors.GetCode(err) != apperrors.CodeUpstreamStatus {
		t.Fatalf("err = %v, want upstream status error", err)
	}
}

func TestDiscordRegistryFetchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	t.Cleanup(srv.Close)

	registry, err := NewDiscordRegistry(srv.URL, "app-1", "secret", srv.Client())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	_, err = registry.Fetch(context.Background())
	if apperrors.GetCode(err) != apperrors.CodeUpstreamDecode {
		t.Fatalf("err = %v, want decode error", err)
	}
}
