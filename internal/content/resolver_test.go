package content_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/content"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
)

type fixture struct {
	t        *testing.T
	root     string
	store    *metadata.Store
	observer *writeCounter
	resolver *content.Resolver
}

type writeCounter struct {
	mu      sync.Mutex
	created int
}

func (w *writeCounter) SidecarCreated(string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.created++
}

func (w *writeCounter) SidecarParseFailed(string) {}

func newFixture(t *testing.T, opts ...content.Option) *fixture {
	t.Helper()
	site := runtimeconfig.DefaultSiteConfig()
	site.LocalContentDir = t.TempDir()
	site.BaseDir = "/content/"
	root := filepath.Join(site.LocalContentDir, "content")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	observer := &writeCounter{}
	store := metadata.NewStore(site, metadata.WithObserver(observer))
	return &fixture{
		t:        t,
		root:     root,
		store:    store,
		observer: observer,
		resolver: content.NewResolver(site.LocalPath(), store, opts...),
	}
}

func (f *fixture) write(rel, body string) {
	f.t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		f.t.Fatalf("write: %v", err)
	}
}

func (f *fixture) page(rel, title string, weight uint32, list ...string) {
	f.t.Helper()
	meta := metadata.DefaultPageMetadata()
	meta.Title = title
	meta.Path = "/" + rel
	meta.Weight = weight
	meta.ContentList = list
	if err := f.store.WritePage(filepath.Join(f.root, filepath.FromSlash(rel)), meta); err != nil {
		f.t.Fatalf("WritePage: %v", err)
	}
}

func TestResolvePageAssemblesBodiesAndMetadata(t *testing.T) {
	f := newFixture(t)
	f.write("blog/post1.md", "---\ntitle: Front\n---\n# Hello\n")
	f.write("blog/post1.html", "<p>raw</p>")
	f.page("blog/post1", "First Post", 5)

	section := metadata.DefaultSectionMetadata()
	section.Description = "Blog"
	if err := f.store.WriteSection(filepath.Join(f.root, "blog"), section); err != nil {
		t.Fatalf("WriteSection: %v", err)
	}

	page, err := f.resolver.ResolvePage(context.Background(), "/blog/post1")
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	if page.WebPath != "/blog/post1" || page.Meta.Title != "First Post" {
		t.Fatalf("unexpected page identity: %s %+v", page.WebPath, page.Meta)
	}
	if page.Anchor != "first-post" {
		t.Fatalf("expected anchor from title, got %q", page.Anchor)
	}
	if page.SectionMeta.Description != "Blog" {
		t.Fatalf("expected parent section metadata, got %+v", page.SectionMeta)
	}
	if !strings.Contains(page.Markdown.Body, `<h1 id="hello">Hello</h1>`) {
		t.Fatalf("expected rendered markdown, got %q", page.Markdown.Body)
	}
	if strings.Contains(page.Markdown.Body, "title: Front") {
		t.Fatalf("expected frontmatter to be stripped, got %q", page.Markdown.Body)
	}
	if page.Markdown.FrontMatter["title"] != "Front" {
		t.Fatalf("expected frontmatter to be exposed, got %#v", page.Markdown.FrontMatter)
	}
	if page.Markdown.Checksum == "" || page.Markdown.Modified.IsZero() {
		t.Fatalf("expected checksum and timestamps on markdown body: %+v", page.Markdown)
	}
	if page.Markdown.Modified.Nanosecond() != 0 {
		t.Fatalf("expected whole second timestamps, got %s", page.Markdown.Modified)
	}
	if page.HTML == nil || page.HTML.Body != "<p>raw</p>" {
		t.Fatalf("expected raw HTML body, got %+v", page.HTML)
	}
	if page.JSON != nil {
		t.Fatalf("expected nil JSON body, got %+v", page.JSON)
	}
	if len(page.List) != 0 {
		t.Fatalf("expected no embedded pages, got %d", len(page.List))
	}
}

func TestResolvePageMissingMarkdownUsesPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.write("data/feed.json", `{"items":[]}`)

	page, err := f.resolver.ResolvePage(context.Background(), "/data/feed")
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	want := "Markdown file does not exist: " + filepath.Join(f.root, "data", "feed.md")
	if page.Markdown.Body != want {
		t.Fatalf("expected placeholder %q, got %q", want, page.Markdown.Body)
	}
	if !page.Markdown.Created.IsZero() || !page.Markdown.Modified.IsZero() {
		t.Fatalf("expected zero timestamps for placeholder")
	}
	if page.JSON == nil || page.JSON.Body != `{"items":[]}` {
		t.Fatalf("expected JSON body, got %+v", page.JSON)
	}
	if page.HTML != nil {
		t.Fatalf("expected nil HTML body")
	}
}

func TestResolvePageSelfHealsMetadataOnce(t *testing.T) {
	f := newFixture(t)
	f.write("notes/todo.md", "- [ ] write tests")

	first, err := f.resolver.ResolvePage(context.Background(), "/notes/todo")
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	if first.Meta.Title != "todo" || first.Meta.Path != "/notes/todo" {
		t.Fatalf("expected synthesized metadata, got %+v", first.Meta)
	}
	if _, err := os.Stat(filepath.Join(f.root, "notes", "todo.content_meta")); err != nil {
		t.Fatalf("expected sidecar on disk: %v", err)
	}

	second, err := f.resolver.ResolvePage(context.Background(), "/notes/todo")
	if err != nil {
		t.Fatalf("second ResolvePage returned error: %v", err)
	}
	if second.Meta.Title != first.Meta.Title || second.Meta.Path != first.Meta.Path {
		t.Fatalf("expected stable metadata, got %+v", second.Meta)
	}
	if f.observer.created != 1 {
		t.Fatalf("expected one sidecar write, got %d", f.observer.created)
	}
}

func TestResolvePageExpandsContentListByWeight(t *testing.T) {
	f := newFixture(t)
	f.write("index.md", "home")
	f.write("blog/heavy.md", "heavy")
	f.write("blog/light.md", "light")
	f.page("index", "Home", 1, "/blog/heavy", "/blog/missing", "/blog/light")
	f.page("blog/heavy", "Heavy", 50)
	f.page("blog/light", "Light", 10)

	page, err := f.resolver.ResolvePage(context.Background(), "/index")
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	if len(page.List) != 2 {
		t.Fatalf("expected missing entry to be skipped, got %d embedded pages", len(page.List))
	}
	if page.List[0].Meta.Title != "Light" || page.List[1].Meta.Title != "Heavy" {
		t.Fatalf("expected pages sorted by weight, got %s, %s", page.List[0].Meta.Title, page.List[1].Meta.Title)
	}
	if _, err := os.Stat(filepath.Join(f.root, "blog", "missing.content_meta")); !os.IsNotExist(err) {
		t.Fatalf("expected skipped entry to leave no sidecar, stat err=%v", err)
	}
}

func TestResolvePageNestedAndRepeatedEntries(t *testing.T) {
	f := newFixture(t)
	f.write("a.md", "a")
	f.write("b.md", "b")
	f.write("c.md", "c")
	f.page("a", "A", 1, "/b", "/c")
	f.page("b", "B", 2, "/c")
	f.page("c", "C", 3)

	page, err := f.resolver.ResolvePage(context.Background(), "/a")
	if err != nil {
		t.Fatalf("expected diamond shaped lists to resolve, got %v", err)
	}
	if len(page.List) != 2 || len(page.List[0].List) != 1 {
		t.Fatalf("unexpected structure: %d top level, %d nested", len(page.List), len(page.List[0].List))
	}
	if page.List[0].List[0].Meta.Title != "C" {
		t.Fatalf("expected C nested under B")
	}
}

func TestResolvePageDetectsCycles(t *testing.T) {
	f := newFixture(t)
	f.write("a.md", "a")
	f.write("b.md", "b")
	f.page("a", "A", 1, "/b")
	f.page("b", "B", 1, "a/")

	_, err := f.resolver.ResolvePage(context.Background(), "/a")
	if !cmserrors.IsCycleDetected(err) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if !errors.Is(err, cmserrors.ErrCycle) {
		t.Fatalf("expected ErrCycle cause, got %v", err)
	}
}

func TestResolvePageEnforcesMaxDepth(t *testing.T) {
	f := newFixture(t, content.WithMaxDepth(2))
	f.write("a.md", "a")
	f.write("b.md", "b")
	f.write("c.md", "c")
	f.page("a", "A", 1, "/b")
	f.page("b", "B", 1, "/c")
	f.page("c", "C", 1)

	_, err := f.resolver.ResolvePage(context.Background(), "/a")
	if !errors.Is(err, cmserrors.ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
}

func TestContentAndDirectoryExistence(t *testing.T) {
	f := newFixture(t)
	f.write("docs/guide.html", "<p>guide</p>")
	f.write("docs/api.json", "{}")

	if !f.resolver.ContentExists("/docs/guide") || !f.resolver.ContentExists("/docs/api") {
		t.Fatalf("expected html and json bodies to count as content")
	}
	if f.resolver.ContentExists("/docs/none") {
		t.Fatalf("expected missing content to report false")
	}
	if f.resolver.ContentExists("/docs") {
		t.Fatalf("expected directory not to imply content")
	}
	if !f.resolver.DirectoryExists("/docs") {
		t.Fatalf("expected docs to be a directory")
	}
	if f.resolver.DirectoryExists("/docs/guide") {
		t.Fatalf("expected content not to imply a directory")
	}
}

func TestListDirectorySortsAndDeduplicates(t *testing.T) {
	f := newFixture(t)
	f.write("blog/one.md", "1")
	f.write("blog/one.html", "<p>1</p>")
	f.write("blog/two.md", "2")
	f.write("blog/sub/three.md", "3")
	f.page("blog/one", "One", 20)
	f.page("blog/two", "Two", 10)

	metas, err := f.resolver.ListDirectory(context.Background(), "/blog")
	if err != nil {
		t.Fatalf("ListDirectory returned error: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected two entries, got %d: %+v", len(metas), metas)
	}
	if metas[0].Title != "Two" || metas[1].Title != "One" {
		t.Fatalf("expected weight order, got %s, %s", metas[0].Title, metas[1].Title)
	}

	if _, err := f.resolver.ListDirectory(context.Background(), "/nope"); !cmserrors.IsFilesystem(err) {
		t.Fatalf("expected filesystem error for missing directory, got %v", err)
	}
}
