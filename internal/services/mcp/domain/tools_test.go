package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/twbb/internal/gamedata"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type fakeRenderer struct {
	gotWC      gamedata.WorldContext
	gotPrinter *message.Printer
}

func (f *fakeRenderer) Render(_ context.Context, content string, wc gamedata.WorldContext, printer *message.Printer) string {
	f.gotWC = wc
	f.gotPrinter = printer
	return "rendered: " + content
}

type fakeDirectory struct {
	servers []gamedata.Server
	worlds  map[string][]gamedata.World
	err     error
}

func (f fakeDirectory) Servers(context.Context) ([]gamedata.Server, error) {
	return f.servers, f.err
}

func (f fakeDirectory) Worlds(_ context.Context, server string) ([]gamedata.World, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.worlds[server], nil
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) != 1 {
		t.Fatalf("result content = %#v, want one item", result)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestRenderHandlerRendersWithWorldContext(t *testing.T) {
	renderer := &fakeRenderer{}
	handler := RenderHandler(renderer, "en-US")

	result, out, err := handler(context.Background(), nil, RenderInput{
		Content: "[b]hi[/b]",
		World:   " br130 ",
		Server:  "br",
		Locale:  "pt-BR",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := RenderResult{Content: "rendered: [b]hi[/b]", World: "br130", Server: "br"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if got := resultText(t, result); got != want.Content {
		t.Fatalf("text = %q, want %q", got, want.Content)
	}
	if renderer.gotWC != (gamedata.WorldContext{World: "br130", Server: "br"}) {
		t.Fatalf("world context = %+v", renderer.gotWC)
	}
	if got := renderer.gotPrinter.Sprintf("render.entity.not_found", "x"); got != "**x não encontrado**" {
		t.Fatalf("printer output = %q, want pt-BR text", got)
	}
}

func TestRenderHandlerFallsBackToDefaultLocale(t *testing.T) {
	renderer := &fakeRenderer{}
	handler := RenderHandler(renderer, "pt-BR")

	if _, _, err := handler(context.Background(), nil, RenderInput{Content: "x", World: "br130", Server: "br"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := message.NewPrinter(language.MustParse("pt-BR")).Sprintf("render.entity.not_found", "x")
	if got := renderer.gotPrinter.Sprintf("render.entity.not_found", "x"); got != want {
		t.Fatalf("printer output = %q, want %q", got, want)
	}
}

func TestRenderHandlerRequiresWorldContext(t *testing.T) {
	renderer := &fakeRenderer{}
	handler := RenderHandler(renderer, "en-US")

	_, _, err := handler(context.Background(), nil, RenderInput{Content: "x", World: "br130"})
	if err == nil {
		t.Fatal("expected error for missing server")
	}
	if apperrors.GetCode(err) != apperrors.CodeInvalidWorldContext {
		t.Fatalf("code = %q, want %q", apperrors.GetCode(err), apperrors.CodeInvalidWorldContext)
	}
	if renderer.gotPrinter != nil {
		t.Fatal("renderer should not be called")
	}
}

func TestServerListHandler(t *testing.T) {
	dir := fakeDirectory{servers: []gamedata.Server{
		{Code: "br", Name: "Brasil", Host: "www.tribalwars.com.br"},
		{Code: "pt", Name: "Portugal", Host: "www.tribalwars.com.pt"},
	}}

	result, out, err := ServerListHandler(dir)(context.Background(), nil, ServerListInput{})
	if err != nil {
		t.Fatalf("list servers: %v", err)
	}
	if diff := cmp.Diff(dir.servers, out.Servers); diff != "" {
		t.Fatalf("servers mismatch (-want +got):\n%s", diff)
	}
	if got, want := resultText(t, result), "br www.tribalwars.com.br\npt www.tribalwars.com.pt"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestServerListHandlerEmptyIsNotNil(t *testing.T) {
	_, out, err := ServerListHandler(fakeDirectory{})(context.Background(), nil, ServerListInput{})
	if err != nil {
		t.Fatalf("list servers: %v", err)
	}
	if out.Servers == nil {
		t.Fatal("servers = nil, want empty slice")
	}
}

func TestServerListHandlerPropagatesError(t *testing.T) {
	upstream := apperrors.New(apperrors.CodeUpstreamStatus, "boom")
	_, _, err := ServerListHandler(fakeDirectory{err: upstream})(context.Background(), nil, ServerListInput{})
	if !errors.Is(err, upstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestWorldListHandler(t *testing.T) {
	dir := fakeDirectory{worlds: map[string][]gamedata.World{
		"pt": {
			{Key: "pt103", URL: "https://pt103.tribalwars.com.pt", Open: true},
			{Key: "pt104", URL: "https://pt104.tribalwars.com.pt", Open: true},
		},
	}}

	result, out, err := WorldListHandler(dir)(context.Background(), nil, WorldListInput{Server: " pt "})
	if err != nil {
		t.Fatalf("list worlds: %v", err)
	}
	if out.Server != "pt" {
		t.Fatalf("server = %q, want %q", out.Server, "pt")
	}
	if diff := cmp.Diff(dir.worlds["pt"], out.Worlds); diff != "" {
		t.Fatalf("worlds mismatch (-want +got):\n%s", diff)
	}
	if got, want := resultText(t, result), "pt103\npt104"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestWorldListHandlerRequiresServer(t *testing.T) {
	_, _, err := WorldListHandler(fakeDirectory{})(context.Background(), nil, WorldListInput{Server: "  "})
	if apperrors.GetCode(err) != apperrors.CodeInvalidRequest {
		t.Fatalf("code = %q, want %q", apperrors.GetCode(err), apperrors.CodeInvalidRequest)
	}
}

func TestToolNames(t *testing.T) {
	tests := []struct {
		tool *mcp.Tool
		want string
	}{
		{RenderTool(), "render_bbcode"},
		{ServerListTool(), "list_servers"},
		{WorldListTool(), "list_worlds"},
	}
	for _, tt := range tests {
		if tt.tool.Name != tt.want {
			t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.want)
		}
		if tt.tool.Description == "" {
			t.Errorf("tool %q has no description", tt.tool.Name)
		}
	}
}
