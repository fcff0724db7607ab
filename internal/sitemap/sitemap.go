package sitemap

import (
	"context"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
	"github.com/goliatone/go-flatcms/internal/tree"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Entry is one URL of the sitemap.
type Entry struct {
	Location string    `json:"location"`
	LastMod  time.Time `json:"lastmod"`
	Priority string    `json:"priority"`
}

// Builder flattens a scanned tree into sitemap entries.
type Builder struct {
	host     string
	priority string
	baseDir  string
	logger   interfaces.Logger
}

// NewBuilder returns a builder for the site.
func NewBuilder(site runtimeconfig.SiteConfig, logger interfaces.Logger) *Builder {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Builder{
		host:     trimHost(site.ProdHost),
		priority: site.XMLPriority,
		baseDir:  site.BaseDir,
		logger:   logger,
	}
}

// Build returns one entry per file in root, sorted by location.
func (b *Builder) Build(ctx context.Context, root *tree.DirTree) ([]Entry, error) {
	if root == nil {
		return []Entry{}, nil
	}
	prefix, err := webpath.NewPrefix(b.baseDir, root.RelativePath)
	if err != nil {
		return nil, cmserrors.Configuration(err, "base_dir")
	}

	entries := []Entry{}
	if err := b.collect(ctx, prefix, root, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	b.logger.Debug("sitemap.built", "root", root.RelativePath, "entries", len(entries))
	return entries, nil
}

func (b *Builder) collect(ctx context.Context, prefix webpath.Prefix, node *tree.DirTree, out *[]Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := prefix.Strip(node.RelativePath)
	for stem, meta := range node.Files {
		*out = append(*out, Entry{
			Location: b.location(dir, stem),
			LastMod:  time.Unix(meta.Modified.Unix(), 0).UTC(),
			Priority: b.priority,
		})
	}
	for _, child := range node.Directories {
		if err := b.collect(ctx, prefix, child, out); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) location(dir, stem string) string {
	if dir == "" {
		return b.host + webpath.Delimiter + html.EscapeString(stem)
	}
	return b.host + webpath.Delimiter + html.EscapeString(dir) + webpath.Delimiter + html.EscapeString(stem)
}

func trimHost(host string) string {
	return strings.TrimRight(strings.TrimSpace(host), webpath.Delimiter)
}
