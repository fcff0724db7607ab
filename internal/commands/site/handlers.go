package sitecmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/commands"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/sitemap"
	"github.com/goliatone/go-flatcms/internal/tree"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const (
	writeSitemapOperation   = "site.write_sitemap"
	writeRobotsOperation    = "site.write_robots"
	ensureMetadataOperation = "site.ensure_metadata"
)

// ErrProdHostMissing is returned when robots.txt is requested without a production host.
var ErrProdHostMissing = errors.New("site command: prod host is empty")

// bodyExtensions are the file extensions that make a stem a page.
var bodyExtensions = []string{"md", "html", "json"}

var (
	_ command.Commander[WriteSitemapCommand]   = (*WriteSitemapHandler)(nil)
	_ command.Commander[WriteRobotsCommand]    = (*WriteRobotsHandler)(nil)
	_ command.Commander[EnsureMetadataCommand] = (*EnsureMetadataHandler)(nil)
)

// SitemapSource produces the sitemap entries of the site.
type SitemapSource interface {
	Sitemap(ctx context.Context) ([]sitemap.Entry, error)
}

// TreeScanner scans a directory into a tree.
type TreeScanner interface {
	Scan(ctx context.Context, rootPath, relativePrefix string) (*tree.DirTree, error)
}

// PageStore reads and self-heals page sidecars.
type PageStore interface {
	ReadPage(contentPath string) (metadata.PageMetadata, bool, error)
	GetOrCreatePage(contentPath string) (metadata.PageMetadata, error)
}

// WriteSitemapHandler renders the sitemap and writes it to disk.
type WriteSitemapHandler struct {
	inner *commands.Handler[WriteSitemapCommand]
}

// NewWriteSitemapHandler creates a handler bound to source.
func NewWriteSitemapHandler(source SitemapSource, logger interfaces.Logger, opts ...commands.HandlerOption[WriteSitemapCommand]) *WriteSitemapHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg WriteSitemapCommand) error {
		entries, err := source.Sitemap(ctx)
		if err != nil {
			return err
		}
		if err := writeFile(msg.OutputPath, []byte(sitemap.RenderXML(entries))); err != nil {
			return err
		}
		baseLogger.Info("site.command.write_sitemap.completed", "output", msg.OutputPath, "entries", len(entries))
		return nil
	}

	handlerOpts := []commands.HandlerOption[WriteSitemapCommand]{
		commands.WithLogger[WriteSitemapCommand](baseLogger),
		commands.WithOperation[WriteSitemapCommand](writeSitemapOperation),
		commands.WithMessageFields(func(msg WriteSitemapCommand) map[string]any {
			return map[string]any{"output": msg.OutputPath}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[WriteSitemapCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &WriteSitemapHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[WriteSitemapCommand].
func (h *WriteSitemapHandler) Execute(ctx context.Context, msg WriteSitemapCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WriteRobotsHandler writes robots.txt for a production host.
type WriteRobotsHandler struct {
	inner *commands.Handler[WriteRobotsCommand]
}

// NewWriteRobotsHandler creates a handler that advertises prodHost's sitemap.
func NewWriteRobotsHandler(prodHost string, logger interfaces.Logger, opts ...commands.HandlerOption[WriteRobotsCommand]) *WriteRobotsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg WriteRobotsCommand) error {
		if strings.TrimSpace(prodHost) == "" {
			return cmserrors.Configuration(ErrProdHostMissing, "prod_host")
		}
		if err := writeFile(msg.OutputPath, []byte(sitemap.RenderRobots(prodHost))); err != nil {
			return err
		}
		baseLogger.Info("site.command.write_robots.completed", "output", msg.OutputPath)
		return nil
	}

	handlerOpts := []commands.HandlerOption[WriteRobotsCommand]{
		commands.WithLogger[WriteRobotsCommand](baseLogger),
		commands.WithOperation[WriteRobotsCommand](writeRobotsOperation),
		commands.WithMessageFields(func(msg WriteRobotsCommand) map[string]any {
			return map[string]any{"output": msg.OutputPath}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[WriteRobotsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &WriteRobotsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[WriteRobotsCommand].
func (h *WriteRobotsHandler) Execute(ctx context.Context, msg WriteRobotsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// EnsureMetadataHandler creates missing page sidecars below a directory.
type EnsureMetadataHandler struct {
	inner *commands.Handler[EnsureMetadataCommand]
}

// NewEnsureMetadataHandler creates a handler that resolves web directories
// against localRoot.
func NewEnsureMetadataHandler(localRoot string, scanner TreeScanner, store PageStore, logger interfaces.Logger, opts ...commands.HandlerOption[EnsureMetadataCommand]) *EnsureMetadataHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg EnsureMetadataCommand) error {
		localDir := webpath.ToLocal(localRoot, msg.Directory)
		info, err := os.Stat(localDir)
		if err != nil {
			return cmserrors.Filesystem(err, "stat", localDir)
		}
		if !info.IsDir() {
			return cmserrors.Filesystem(errors.New("not a directory"), "stat", localDir)
		}

		root, err := scanner.Scan(ctx, localDir, "")
		if err != nil {
			return err
		}

		report := EnsureMetadataReport{Created: []string{}, Missing: []string{}}
		if err := ensurePages(ctx, store, root, msg.Directory, msg.DryRun, &report); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"pages":    report.Pages,
			"existing": report.Existing,
			"created":  len(report.Created),
			"missing":  len(report.Missing),
			"dry_run":  msg.DryRun,
		}).Info("site.command.ensure_metadata.completed")
		if msg.Report != nil {
			*msg.Report = report
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[EnsureMetadataCommand]{
		commands.WithLogger[EnsureMetadataCommand](baseLogger),
		commands.WithOperation[EnsureMetadataCommand](ensureMetadataOperation),
		commands.WithMessageFields(func(msg EnsureMetadataCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[EnsureMetadataCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &EnsureMetadataHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[EnsureMetadataCommand].
func (h *EnsureMetadataHandler) Execute(ctx context.Context, msg EnsureMetadataCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ensurePages(ctx context.Context, store PageStore, node *tree.DirTree, webDir string, dryRun bool, report *EnsureMetadataReport) error {
	for _, stem := range node.SortedFileNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := filepath.Join(node.AbsolutePath, stem)
		if !hasBody(base) {
			continue
		}
		report.Pages++

		_, exists, err := store.ReadPage(base)
		if err != nil {
			return err
		}
		web := webpath.Join(webDir, stem)
		switch {
		case exists:
			report.Existing++
		case dryRun:
			report.Missing = append(report.Missing, web)
		default:
			if _, err := store.GetOrCreatePage(base); err != nil {
				return err
			}
			report.Created = append(report.Created, web)
		}
	}
	for _, name := range node.SortedDirectoryNames() {
		if err := ensurePages(ctx, store, node.Directories[name], webpath.Join(webDir, name), dryRun, report); err != nil {
			return err
		}
	}
	return nil
}

func hasBody(base string) bool {
	for _, ext := range bodyExtensions {
		info, err := os.Stat(base + "." + ext)
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cmserrors.Filesystem(err, "mkdir", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cmserrors.Filesystem(err, "write", path)
	}
	return nil
}
