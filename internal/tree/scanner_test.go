package tree_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/tree"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func buildSite(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "content")
	writeFile(t, filepath.Join(root, "index.md"), "# Home")
	writeFile(t, filepath.Join(root, "blog", "post1.md"), "hello")
	writeFile(t, filepath.Join(root, "blog", "post1.content_meta"), "{\"title\":\"one two three\"}")
	writeFile(t, filepath.Join(root, "blog", "2024", "recap.html"), "<p>recap</p>")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir empty: %v", err)
	}
	return root
}

func TestScanMirrorsFilesystem(t *testing.T) {
	root := buildSite(t)

	got, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if got.AbsolutePath != root {
		t.Fatalf("expected absolute path %s, got %s", root, got.AbsolutePath)
	}
	if got.RelativePath != "content" {
		t.Fatalf("expected root relative path content, got %q", got.RelativePath)
	}
	if names := got.SortedFileNames(); !reflect.DeepEqual(names, []string{"index"}) {
		t.Fatalf("unexpected root files %v", names)
	}
	if names := got.SortedDirectoryNames(); !reflect.DeepEqual(names, []string{"blog", "empty"}) {
		t.Fatalf("unexpected root directories %v", names)
	}

	blog := got.Directories["blog"]
	if blog.RelativePath != "content/blog" {
		t.Fatalf("expected content/blog, got %q", blog.RelativePath)
	}
	nested := blog.Directories["2024"]
	if nested == nil || nested.RelativePath != "content/blog/2024" {
		t.Fatalf("expected nested directory content/blog/2024, got %+v", nested)
	}
	if meta := nested.Files["recap"]; meta.Size != int64(len("<p>recap</p>")) {
		t.Fatalf("expected recap size %d, got %d", len("<p>recap</p>"), meta.Size)
	}

	empty := got.Directories["empty"]
	if empty.Files == nil || empty.Directories == nil {
		t.Fatalf("expected non-nil maps for empty directory")
	}
	if len(empty.Files) != 0 || len(empty.Directories) != 0 {
		t.Fatalf("expected empty directory to have no entries")
	}

	if got.DirMeta.Modified.IsZero() || got.DirMeta.Created.IsZero() {
		t.Fatalf("expected directory timestamps to be populated: %+v", got.DirMeta)
	}

	stats := got.Stats()
	if stats.Directories != 4 || stats.Files != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestScanRelativePrefix(t *testing.T) {
	root := buildSite(t)

	got, err := tree.NewScanner().Scan(context.Background(), filepath.Join(root, "blog"), "/site")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got.RelativePath != "site/blog" {
		t.Fatalf("expected leading delimiter to be stripped, got %q", got.RelativePath)
	}
	if got.Directories["2024"].RelativePath != "site/blog/2024" {
		t.Fatalf("unexpected nested path %q", got.Directories["2024"].RelativePath)
	}
}

func TestScanStemCollisionKeepsLastEntry(t *testing.T) {
	root := buildSite(t)

	got, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	blog := got.Directories["blog"]
	if len(blog.Files) != 1 {
		t.Fatalf("expected stems to collapse into one entry, got %v", blog.SortedFileNames())
	}
	// post1.md sorts after post1.content_meta.
	if size := blog.Files["post1"].Size; size != int64(len("hello")) {
		t.Fatalf("expected markdown entry to win the collision, got size %d", size)
	}
}

func TestFilesInTree(t *testing.T) {
	root := buildSite(t)

	got, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	want := []string{"content/blog/2024/recap", "content/blog/post1", "content/index"}
	if files := tree.FilesInTree(got); !reflect.DeepEqual(files, want) {
		t.Fatalf("FilesInTree = %v, want %v", files, want)
	}
}

func TestScanSingleWorkerDoesNotDeadlock(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deep")
	path := root
	for _, segment := range []string{"a", "b", "c", "d", "e"} {
		path = filepath.Join(path, segment)
		writeFile(t, filepath.Join(path, "page.md"), segment)
		writeFile(t, filepath.Join(path, "sibling", "page.md"), segment)
	}

	got, err := tree.NewScanner(tree.WithWorkers(1)).Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if stats := got.Stats(); stats.Files != 10 {
		t.Fatalf("expected 10 files, got %+v", stats)
	}
}

func TestScanDetectsSymlinkLoop(t *testing.T) {
	root := buildSite(t)
	if err := os.Symlink(root, filepath.Join(root, "blog", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err == nil {
		t.Fatal("expected symlink loop to fail the scan")
	}
	if !cmserrors.IsCycleDetected(err) {
		t.Fatalf("expected cycle detected error, got %v", err)
	}
	if !errors.Is(err, cmserrors.ErrCycle) {
		t.Fatalf("expected ErrCycle cause, got %v", err)
	}
}

func TestScanFollowsDirectorySymlinks(t *testing.T) {
	root := buildSite(t)
	shared := filepath.Join(t.TempDir(), "shared")
	writeFile(t, filepath.Join(shared, "faq.md"), "faq")
	if err := os.Symlink(shared, filepath.Join(root, "shared")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := tree.NewScanner().Scan(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	linked, ok := got.Directories["shared"]
	if !ok {
		t.Fatalf("expected symlinked directory to be scanned as a directory")
	}
	if _, ok := linked.Files["faq"]; !ok {
		t.Fatalf("expected faq file inside symlinked directory")
	}
}

func TestScanEnforcesMaxDepth(t *testing.T) {
	root := buildSite(t)

	_, err := tree.NewScanner(tree.WithMaxDepth(2)).Scan(context.Background(), root, "")
	if !cmserrors.IsCycleDetected(err) {
		t.Fatalf("expected depth overrun to be reported as cycle error, got %v", err)
	}
	if !errors.Is(err, cmserrors.ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth cause, got %v", err)
	}

	if _, err := tree.NewScanner(tree.WithMaxDepth(3)).Scan(context.Background(), root, ""); err != nil {
		t.Fatalf("expected depth 3 to fit the fixture, got %v", err)
	}
}

func TestScanMissingRootIsFilesystemError(t *testing.T) {
	_, err := tree.NewScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	if !cmserrors.IsFilesystem(err) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	root := buildSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tree.NewScanner().Scan(ctx, root, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []tree.Stats
	errs  []error
}

func (r *recordingObserver) ScanCompleted(_ string, _ time.Duration, stats tree.Stats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, stats)
	r.errs = append(r.errs, err)
}

func TestScanNotifiesObserver(t *testing.T) {
	root := buildSite(t)
	observer := &recordingObserver{}

	if _, err := tree.NewScanner(tree.WithObserver(observer)).Scan(context.Background(), root, ""); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(observer.calls) != 1 {
		t.Fatalf("expected one observer call, got %d", len(observer.calls))
	}
	if observer.calls[0].Files != 3 || observer.errs[0] != nil {
		t.Fatalf("unexpected observation %+v err=%v", observer.calls[0], observer.errs[0])
	}
}
