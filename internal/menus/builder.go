package menus

import (
	"context"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/identity"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/tree"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// SectionReader loads the section metadata of a directory.
type SectionReader interface {
	ReadSection(dirPath string) (metadata.SectionMetadata, error)
}

// Builder derives the navigation menu from a scanned tree.
type Builder struct {
	sections SectionReader
	baseDir  string
	logger   interfaces.Logger
}

// NewBuilder returns a builder that strips baseDir from relative paths.
func NewBuilder(sections SectionReader, baseDir string, logger interfaces.Logger) *Builder {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Builder{
		sections: sections,
		baseDir:  baseDir,
		logger:   logger,
	}
}

// Build returns one item per subdirectory of root, keyed by directory name.
// Each item carries its section metadata and its own children.
func (b *Builder) Build(ctx context.Context, root *tree.DirTree) (map[string]*MenuItem, error) {
	if root == nil {
		return map[string]*MenuItem{}, nil
	}
	prefix, err := webpath.NewPrefix(b.baseDir, root.RelativePath)
	if err != nil {
		return nil, cmserrors.Configuration(err, "base_dir")
	}

	items, err := b.build(ctx, prefix, root)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("menus.built", "root", root.RelativePath, "items", len(items))
	return items, nil
}

func (b *Builder) build(ctx context.Context, prefix webpath.Prefix, node *tree.DirTree) (map[string]*MenuItem, error) {
	items := make(map[string]*MenuItem, len(node.Directories))
	for _, name := range node.SortedDirectoryNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		child := node.Directories[name]

		meta, err := b.sections.ReadSection(child.AbsolutePath)
		if err != nil {
			return nil, err
		}
		relative := prefix.Strip(child.RelativePath)

		children, err := b.build(ctx, prefix, child)
		if err != nil {
			return nil, err
		}
		items[name] = &MenuItem{
			ID:            identity.MenuItemUUID(relative),
			Name:          name,
			MenuMeta:      meta,
			NumberOfFiles: uint32(len(child.Files)),
			RelativePath:  relative,
			Children:      children,
		}
	}
	return items, nil
}
