package sitecmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
	"github.com/goliatone/go-flatcms/internal/sitemap"
	"github.com/goliatone/go-flatcms/internal/tree"
)

type stubSitemapSource struct {
	entries []sitemap.Entry
	err     error
	calls   int
}

func (s *stubSitemapSource) Sitemap(context.Context) ([]sitemap.Entry, error) {
	s.calls++
	return s.entries, s.err
}

type recorderCall struct {
	command string
	err     error
}

type stubRecorder struct {
	calls []recorderCall
}

func (r *stubRecorder) CommandExecuted(command string, err error) {
	r.calls = append(r.calls, recorderCall{command: command, err: err})
}

type stubRegistry struct {
	handlers []any
}

func (r *stubRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func writeTestFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newSiteFixture(t *testing.T) (runtimeconfig.SiteConfig, *metadata.Store) {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "index.md"), "# home")
	writeTestFile(t, filepath.Join(root, "posts", "a.md"), "# a")
	writeTestFile(t, filepath.Join(root, "posts", "b.html"), "<p>b</p>")
	writeTestFile(t, filepath.Join(root, "posts", "notes.txt"), "not a page")
	writeTestFile(t, filepath.Join(root, "posts.menu_meta"), `{"weight": 1}`)

	site := runtimeconfig.DefaultSiteConfig()
	site.LocalContentDir = root
	site.BaseDir = "/"
	store := metadata.NewStore(site)
	if err := store.WritePage(filepath.Join(root, "posts", "b.html"), metadata.DefaultPageMetadata()); err != nil {
		t.Fatalf("seed sidecar: %v", err)
	}
	return site, store
}

func TestWriteSitemapHandlerWritesXML(t *testing.T) {
	source := &stubSitemapSource{entries: []sitemap.Entry{{
		Location: "https://example.com/blog/post",
		LastMod:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Priority: "0.64",
	}}}
	out := filepath.Join(t.TempDir(), "public", "sitemap.xml")

	handler := NewWriteSitemapHandler(source, nil)
	if err := handler.Execute(context.Background(), WriteSitemapCommand{OutputPath: out}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != sitemap.RenderXML(source.entries) {
		t.Fatalf("unexpected sitemap:\n%s", data)
	}
}

func TestWriteSitemapHandlerPropagatesSourceError(t *testing.T) {
	source := &stubSitemapSource{err: cmserrors.Configuration(errors.New("bad base dir"), "base_dir")}
	out := filepath.Join(t.TempDir(), "sitemap.xml")

	err := NewWriteSitemapHandler(source, nil).Execute(context.Background(), WriteSitemapCommand{OutputPath: out})
	if !cmserrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output file, got %v", statErr)
	}
}

func TestWriteSitemapHandlerValidatesOutput(t *testing.T) {
	source := &stubSitemapSource{}
	for _, output := range []string{"", "  ", "public/"} {
		err := NewWriteSitemapHandler(source, nil).Execute(context.Background(), WriteSitemapCommand{OutputPath: output})
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("output %q: expected validation error, got %v", output, err)
		}
	}
	if source.calls != 0 {
		t.Fatalf("expected source not to be called, got %d calls", source.calls)
	}
}

func TestWriteRobotsHandler(t *testing.T) {
	out := filepath.Join(t.TempDir(), "robots.txt")
	handler := NewWriteRobotsHandler("https://example.com/", nil)
	if err := handler.Execute(context.Background(), WriteRobotsCommand{OutputPath: out}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != sitemap.RenderRobots("https://example.com/") {
		t.Fatalf("unexpected robots.txt: %q", data)
	}
}

func TestWriteRobotsHandlerRequiresHost(t *testing.T) {
	out := filepath.Join(t.TempDir(), "robots.txt")
	err := NewWriteRobotsHandler(" ", nil).Execute(context.Background(), WriteRobotsCommand{OutputPath: out})
	if !cmserrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEnsureMetadataDryRunReportsMissing(t *testing.T) {
	site, store := newSiteFixture(t)
	handler := NewEnsureMetadataHandler(site.LocalPath(), tree.NewScanner(), store, nil)

	var report EnsureMetadataReport
	err := handler.Execute(context.Background(), EnsureMetadataCommand{DryRun: true, Report: &report})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if report.Pages != 3 || report.Existing != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if strings.Join(report.Missing, ",") != "index,posts/a" {
		t.Fatalf("unexpected missing list %v", report.Missing)
	}
	if len(report.Created) != 0 {
		t.Fatalf("dry run must not create sidecars, got %v", report.Created)
	}
	if _, err := os.Stat(filepath.Join(site.LocalContentDir, "posts", "a.content_meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no sidecar after dry run, got %v", err)
	}
}

func TestEnsureMetadataCreatesMissingSidecars(t *testing.T) {
	site, store := newSiteFixture(t)
	handler := NewEnsureMetadataHandler(site.LocalPath(), tree.NewScanner(), store, nil)

	var report EnsureMetadataReport
	if err := handler.Execute(context.Background(), EnsureMetadataCommand{Directory: "/posts", Report: &report}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if report.Pages != 2 || report.Existing != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if strings.Join(report.Created, ",") != "posts/a" {
		t.Fatalf("unexpected created list %v", report.Created)
	}

	meta, exists, err := store.ReadPage(filepath.Join(site.LocalContentDir, "posts", "a.md"))
	if err != nil || !exists {
		t.Fatalf("expected sidecar for posts/a, exists=%v err=%v", exists, err)
	}
	if meta.Title != "a" || meta.Path != "/posts/a" {
		t.Fatalf("unexpected synthesized metadata %+v", meta)
	}
	if _, err := os.Stat(filepath.Join(site.LocalContentDir, "posts", "notes.content_meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("non page file must not get a sidecar, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(site.LocalContentDir, "index.content_meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("files outside the directory must be untouched, got %v", err)
	}
}

func TestEnsureMetadataMissingDirectory(t *testing.T) {
	site, store := newSiteFixture(t)
	handler := NewEnsureMetadataHandler(site.LocalPath(), tree.NewScanner(), store, nil)

	err := handler.Execute(context.Background(), EnsureMetadataCommand{Directory: "drafts"})
	if !cmserrors.IsFilesystem(err) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

func TestEnsureMetadataRejectsParentSegments(t *testing.T) {
	err := EnsureMetadataCommand{Directory: "posts/../../etc"}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err := (EnsureMetadataCommand{Directory: "posts/2024"}).Validate(); err != nil {
		t.Fatalf("expected nested directory to validate, got %v", err)
	}
}

func TestRegisterSiteCommandsRecordsOutcomes(t *testing.T) {
	site, store := newSiteFixture(t)
	recorder := &stubRecorder{}
	registry := &stubRegistry{}

	set, err := RegisterSiteCommands(registry, Dependencies{
		LocalRoot: site.LocalPath(),
		ProdHost:  "https://example.com",
		Sitemap:   &stubSitemapSource{},
		Scanner:   tree.NewScanner(),
		Store:     store,
		Recorder:  recorder,
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(registry.handlers) != 3 {
		t.Fatalf("expected 3 registered handlers, got %d", len(registry.handlers))
	}

	out := filepath.Join(t.TempDir(), "robots.txt")
	if err := set.WriteRobots.Execute(context.Background(), WriteRobotsCommand{OutputPath: out}); err != nil {
		t.Fatalf("write robots: %v", err)
	}
	if err := set.EnsureMetadata.Execute(context.Background(), EnsureMetadataCommand{Directory: "missing"}); err == nil {
		t.Fatal("expected ensure metadata to fail for a missing directory")
	}

	if len(recorder.calls) != 2 {
		t.Fatalf("expected 2 recorded outcomes, got %d", len(recorder.calls))
	}
	if recorder.calls[0].command != writeRobotsMessageType || recorder.calls[0].err != nil {
		t.Fatalf("unexpected first outcome %+v", recorder.calls[0])
	}
	if recorder.calls[1].command != ensureMetadataMessageType || recorder.calls[1].err == nil {
		t.Fatalf("unexpected second outcome %+v", recorder.calls[1])
	}
}

func TestRegisterSiteCommandsRequiresDependencies(t *testing.T) {
	if _, err := RegisterSiteCommands(nil, Dependencies{}, nil); err == nil {
		t.Fatal("expected error without a sitemap source")
	}
	if _, err := RegisterSiteCommands(nil, Dependencies{Sitemap: &stubSitemapSource{}}, nil); err == nil {
		t.Fatal("expected error without scanner and store")
	}
}

func TestSubscribeDispatchesToHandlers(t *testing.T) {
	site, store := newSiteFixture(t)
	set, err := RegisterSiteCommands(nil, Dependencies{
		LocalRoot: site.LocalPath(),
		ProdHost:  "https://example.com",
		Sitemap:   &stubSitemapSource{},
		Scanner:   tree.NewScanner(),
		Store:     store,
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	unsubscribe := Subscribe(set)
	t.Cleanup(unsubscribe)

	out := filepath.Join(t.TempDir(), "robots.txt")
	if err := dispatcher.Dispatch(context.Background(), WriteRobotsCommand{OutputPath: out}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected dispatched handler to write robots.txt: %v", err)
	}
}
