package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/zeebo/xxh3"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/identity"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/tree"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Body file extensions, in lookup order.
const (
	ExtMarkdown = "md"
	ExtHTML     = "html"
	ExtJSON     = "json"
)

// DefaultMaxDepth bounds content list nesting when no limit is configured.
const DefaultMaxDepth = 32

const missingMarkdownPrefix = "Markdown file does not exist: "

var bodyExtensions = []string{ExtMarkdown, ExtHTML, ExtJSON}

// PageStore is the metadata access the resolver needs.
type PageStore interface {
	GetOrCreatePage(contentPath string) (metadata.PageMetadata, error)
	ReadSection(dirPath string) (metadata.SectionMetadata, error)
}

// Renderer turns Markdown sources into HTML.
type Renderer interface {
	Render(source []byte) markdown.Rendered
}

// Observer is notified after each top level resolution.
type Observer interface {
	PageResolved(elapsed time.Duration, embedded int, err error)
}

// Resolver assembles pages from body files and sidecars under the content
// root. Every call reads the filesystem afresh.
type Resolver struct {
	localRoot string
	store     PageStore
	renderer  Renderer
	maxDepth  int
	logger    interfaces.Logger
	observer  Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth bounds content list nesting.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithRenderer overrides the Markdown renderer.
func WithRenderer(renderer Renderer) Option {
	return func(r *Resolver) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

// WithLogger overrides the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a resolution observer.
func WithObserver(observer Observer) Option {
	return func(r *Resolver) {
		r.observer = observer
	}
}

// NewResolver returns a resolver rooted at localRoot.
func NewResolver(localRoot string, store PageStore, opts ...Option) *Resolver {
	r := &Resolver{
		localRoot: localRoot,
		store:     store,
		renderer:  markdown.NewService(interfaces.ParseOptions{}),
		maxDepth:  DefaultMaxDepth,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolvePage assembles the page at webPath, expanding its content list
// recursively. Missing bodies degrade to placeholders; a content list that
// loops back to an ancestor, or nests deeper than the configured limit,
// fails with a cycle error.
func (r *Resolver) ResolvePage(ctx context.Context, webPath string) (*Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	page, err := r.resolve(ctx, webPath, map[string]struct{}{}, 0)

	embedded := 0
	if page != nil {
		embedded = len(page.List)
	}
	if r.observer != nil {
		r.observer.PageResolved(time.Since(start), embedded, err)
	}
	if err != nil {
		logging.WithError(r.logger, err).Warn("content.page.failed", "web_path", webPath)
		return nil, err
	}
	r.logger.Debug("content.page.resolved", "web_path", webPath, "embedded", embedded)
	return page, nil
}

func (r *Resolver) resolve(ctx context.Context, webPath string, visiting map[string]struct{}, depth int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := canonical(webPath)
	if _, seen := visiting[key]; seen {
		return nil, cmserrors.CycleDetected(cmserrors.ErrCycle, key)
	}
	if depth >= r.maxDepth {
		return nil, cmserrors.CycleDetected(cmserrors.ErrMaxDepth, key)
	}
	visiting[key] = struct{}{}
	defer delete(visiting, key)

	local := r.localPath(webPath)
	logger := logging.WithPathContext(r.logger, key, local)

	section, err := r.store.ReadSection(filepath.Dir(local))
	if err != nil {
		return nil, err
	}
	meta, err := r.store.GetOrCreatePage(local)
	if err != nil {
		return nil, err
	}

	page := &Page{
		ID:          identity.PageUUID(key),
		WebPath:     key,
		Anchor:      anchorFor(meta.Title, key),
		Meta:        meta,
		SectionMeta: section,
		List:        []*Page{},
	}

	if page.Markdown, err = r.readMarkdown(local); err != nil {
		return nil, err
	}
	if page.HTML, err = readRaw(local, ExtHTML); err != nil {
		return nil, err
	}
	if page.JSON, err = readRaw(local, ExtJSON); err != nil {
		return nil, err
	}

	for _, entry := range meta.ContentList {
		if !r.ContentExists(entry) {
			logger.Warn("content.list.entry_missing", "entry", entry)
			continue
		}
		child, err := r.resolve(ctx, entry, visiting, depth+1)
		if err != nil {
			return nil, err
		}
		page.List = append(page.List, child)
	}
	sort.SliceStable(page.List, func(i, j int) bool {
		return page.List[i].Meta.Weight < page.List[j].Meta.Weight
	})
	return page, nil
}

func (r *Resolver) readMarkdown(local string) (Body, error) {
	mdPath := webpath.SetExtension(local, ExtMarkdown)
	source, meta, ok, err := readFile(mdPath)
	if err != nil {
		return Body{}, err
	}
	if !ok {
		return Body{Body: missingMarkdownPrefix + mdPath}, nil
	}
	rendered := r.renderer.Render(source)
	return Body{
		Created:     meta.Created,
		Modified:    meta.Modified,
		Body:        rendered.HTML,
		Checksum:    checksum(source),
		FrontMatter: rendered.FrontMatter,
	}, nil
}

func readRaw(local, ext string) (*Body, error) {
	source, meta, ok, err := readFile(webpath.SetExtension(local, ext))
	if err != nil || !ok {
		return nil, err
	}
	return &Body{
		Created:  meta.Created,
		Modified: meta.Modified,
		Body:     string(source),
		Checksum: checksum(source),
	}, nil
}

// readFile returns the contents and whole-second UTC timestamps of path. A
// missing file reports ok=false without error.
func readFile(path string) ([]byte, tree.FileMeta, bool, error) {
	source, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, tree.FileMeta{}, false, nil
	}
	if err != nil {
		return nil, tree.FileMeta{}, false, cmserrors.Filesystem(err, "read", path)
	}
	meta, err := tree.Stat(path)
	if err != nil {
		return nil, tree.FileMeta{}, false, cmserrors.Filesystem(err, "stat", path)
	}
	meta.Created = wholeSeconds(meta.Created)
	meta.Modified = wholeSeconds(meta.Modified)
	return source, meta, true, nil
}

// ContentExists reports whether webPath has a Markdown, HTML or JSON body.
func (r *Resolver) ContentExists(webPath string) bool {
	local := r.localPath(webPath)
	for _, ext := range bodyExtensions {
		if info, err := os.Stat(webpath.SetExtension(local, ext)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// DirectoryExists reports whether webPath names a directory.
func (r *Resolver) DirectoryExists(webPath string) bool {
	info, err := os.Stat(r.localPath(webPath))
	return err == nil && info.IsDir()
}

// ListDirectory returns the metadata of every content item in webDir, one per
// stem, sorted by weight. Sidecars and subdirectories are skipped; missing
// sidecars are created.
func (r *Resolver) ListDirectory(ctx context.Context, webDir string) ([]metadata.PageMetadata, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	local := r.localPath(webDir)
	entries, err := os.ReadDir(local)
	if err != nil {
		return nil, cmserrors.Filesystem(err, "read dir", local)
	}

	seen := map[string]struct{}{}
	metas := []metadata.PageMetadata{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if strings.HasSuffix(name, "meta") {
			continue
		}
		full := filepath.Join(local, name)
		info, err := os.Stat(full)
		if err != nil {
			return nil, cmserrors.Filesystem(err, "stat", full)
		}
		if info.IsDir() {
			continue
		}
		stem := webpath.Stem(name)
		if _, ok := seen[stem]; ok {
			continue
		}
		seen[stem] = struct{}{}

		meta, err := r.store.GetOrCreatePage(full)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Weight < metas[j].Weight
	})
	return metas, nil
}

func (r *Resolver) localPath(webPath string) string {
	return webpath.ToLocal(r.localRoot, webPath)
}

func canonical(webPath string) string {
	return webpath.Delimiter + webpath.Join(webPath)
}

func anchorFor(title, webPath string) string {
	if anchor, err := slug.Normalize(title); err == nil && anchor != "" {
		return anchor
	}
	if anchor, err := slug.Normalize(strings.ReplaceAll(webPath, webpath.Delimiter, " ")); err == nil {
		return anchor
	}
	return ""
}

func checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

func wholeSeconds(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Unix(t.Unix(), 0).UTC()
}
