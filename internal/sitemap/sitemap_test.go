package sitemap_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
	"github.com/goliatone/go-flatcms/internal/sitemap"
	"github.com/goliatone/go-flatcms/internal/tree"
)

func fixtureTree() *tree.DirTree {
	modified := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.FixedZone("X", 3600))
	return &tree.DirTree{
		AbsolutePath: "/srv/content",
		RelativePath: "content",
		Files: map[string]tree.FileMeta{
			"index": {Modified: modified},
		},
		Directories: map[string]*tree.DirTree{
			"blog": {
				AbsolutePath: "/srv/content/blog",
				RelativePath: "content/blog",
				Files: map[string]tree.FileMeta{
					"post1": {Modified: modified},
					"a&b":   {Modified: modified},
				},
				Directories: map[string]*tree.DirTree{},
			},
		},
	}
}

func site(host string) runtimeconfig.SiteConfig {
	return runtimeconfig.SiteConfig{
		ProdHost:        host,
		XMLPriority:     "0.64",
		BaseDir:         "/content/",
		LocalContentDir: "/srv",
	}
}

func TestBuildProducesCanonicalLocations(t *testing.T) {
	entries, err := sitemap.NewBuilder(site("https://host/"), nil).Build(context.Background(), fixtureTree())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	want := []string{
		"https://host/blog/a&amp;b",
		"https://host/blog/post1",
		"https://host/index",
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i, entry := range entries {
		if entry.Location != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], entry.Location)
		}
		if strings.Contains(strings.TrimPrefix(entry.Location, "https://"), "//") {
			t.Fatalf("unexpected doubled delimiter in %s", entry.Location)
		}
		if entry.Priority != "0.64" {
			t.Fatalf("expected configured priority, got %q", entry.Priority)
		}
		wantMod := time.Date(2024, 3, 14, 14, 9, 26, 0, time.UTC)
		if !entry.LastMod.Equal(wantMod) || entry.LastMod.Location() != time.UTC {
			t.Fatalf("expected lastmod truncated to seconds in UTC, got %s", entry.LastMod)
		}
	}
}

func TestBuildRejectsBaseDirWithoutTrailingDelimiter(t *testing.T) {
	cfg := site("https://host")
	cfg.BaseDir = "/content"

	_, err := sitemap.NewBuilder(cfg, nil).Build(context.Background(), fixtureTree())
	if !cmserrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildFromScannedTree(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "content")
	if err := os.MkdirAll(filepath.Join(root, "blog"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "blog", "post1.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	scanned, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	entries, err := sitemap.NewBuilder(site("https://host"), nil).Build(context.Background(), scanned)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Location != "https://host/blog/post1" {
		t.Fatalf("expected https://host/blog/post1, got %+v", entries)
	}
}

func TestRenderXML(t *testing.T) {
	entries := []sitemap.Entry{{
		Location: "https://host/blog/post1",
		LastMod:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Priority: "0.64",
	}}

	out := sitemap.RenderXML(entries)
	for _, fragment := range []string{
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://host/blog/post1</loc>",
		"<lastmod>2024-01-02T03:04:05Z</lastmod>",
		"<priority>0.64</priority>",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

func TestRenderRobots(t *testing.T) {
	want := "User-agent: *\nAllow: /\n\nSitemap: https://host/sitemap.xml\n"
	if got := sitemap.RenderRobots("https://host/"); got != want {
		t.Fatalf("unexpected robots output:\n%q", got)
	}
}
