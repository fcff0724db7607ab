// Package flatcms turns a directory of Markdown, HTML and JSON files into a
// navigable site: a scanned tree, a menu, a sitemap and resolved pages whose
// metadata lives in JSON sidecars next to the content.
package flatcms

import (
	"context"
	"strings"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	sitecmd "github.com/goliatone/go-flatcms/internal/commands/site"
	"github.com/goliatone/go-flatcms/internal/content"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/logging/console"
	"github.com/goliatone/go-flatcms/internal/logging/gologger"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/internal/menus"
	"github.com/goliatone/go-flatcms/internal/metadata"
	"github.com/goliatone/go-flatcms/internal/metrics"
	"github.com/goliatone/go-flatcms/internal/sitemap"
	"github.com/goliatone/go-flatcms/internal/tree"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Exported domain types.
type (
	DirTree         = tree.DirTree
	FileMeta        = tree.FileMeta
	MenuItem        = menus.MenuItem
	SitemapEntry    = sitemap.Entry
	Page            = content.Page
	PageBody        = content.Body
	PageMetadata    = metadata.PageMetadata
	SectionMetadata = metadata.SectionMetadata
)

// Module is the flat-file CMS runtime façade.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	recorder *metrics.Recorder

	scanner  *tree.Scanner
	store    *metadata.Store
	menus    *menus.Builder
	sitemap  *sitemap.Builder
	resolver *content.Resolver
}

// Option customises Module construction.
type Option func(*moduleOptions)

type moduleOptions struct {
	provider interfaces.LoggerProvider
	parser   interfaces.MarkdownParser
}

// WithLoggerProvider replaces the provider selected by cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// WithMarkdownParser replaces the goldmark parser used for page bodies.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(o *moduleOptions) {
		o.parser = parser
	}
}

// New validates cfg and wires every component.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cmserrors.Configuration(err, "config")
	}

	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, cmserrors.Configuration(err, "logging")
		}
	}

	m := &Module{
		cfg:      cfg,
		provider: provider,
		logger:   logging.ModuleLogger(provider, ""),
	}
	if cfg.Metrics.Enabled {
		m.recorder = metrics.New(cfg.Metrics.Namespace)
	}

	scanOpts := []tree.Option{
		tree.WithWorkers(cfg.Scan.Workers),
		tree.WithMaxDepth(cfg.Scan.MaxDepth),
		tree.WithLogger(logging.TreeLogger(provider)),
	}
	storeOpts := []metadata.Option{
		metadata.WithLogger(logging.MetadataLogger(provider)),
		metadata.WithReadOnly(cfg.Resolve.ReadOnly),
	}

	contentLogger := logging.ContentLogger(provider)
	serviceOpts := []markdown.ServiceOption{markdown.WithLogger(contentLogger)}
	if options.parser != nil {
		serviceOpts = append(serviceOpts, markdown.WithParser(options.parser))
	}
	renderer := markdown.NewService(interfaces.ParseOptions{
		Extensions:     cfg.Markdown.Extensions,
		HardWraps:      cfg.Markdown.HardWraps,
		SafeMode:       cfg.Markdown.SafeMode,
		HighlightStyle: cfg.Markdown.HighlightStyle,
	}, serviceOpts...)
	resolveOpts := []content.Option{
		content.WithMaxDepth(cfg.Resolve.MaxDepth),
		content.WithRenderer(renderer),
		content.WithLogger(contentLogger),
	}

	if m.recorder != nil {
		scanOpts = append(scanOpts, tree.WithObserver(m.recorder))
		storeOpts = append(storeOpts, metadata.WithObserver(m.recorder))
		resolveOpts = append(resolveOpts, content.WithObserver(m.recorder))
	}

	m.scanner = tree.NewScanner(scanOpts...)
	m.store = metadata.NewStore(cfg.Site, storeOpts...)
	m.menus = menus.NewBuilder(m.store, cfg.Site.BaseDir, logging.MenusLogger(provider))
	m.sitemap = sitemap.NewBuilder(cfg.Site, logging.SitemapLogger(provider))
	m.resolver = content.NewResolver(cfg.Site.LocalPath(), m.store, resolveOpts...)

	m.logger.Debug("flatcms.module.ready",
		"local_path", cfg.Site.LocalPath(),
		"read_only", cfg.Resolve.ReadOnly,
		"metrics", cfg.Metrics.Enabled,
	)
	return m, nil
}

// Config returns the validated configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider exposes the provider every component logs through.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Metrics returns the recorder, or nil when metrics are disabled.
func (m *Module) Metrics() *metrics.Recorder {
	return m.recorder
}

// Tree scans the content root.
func (m *Module) Tree(ctx context.Context) (*DirTree, error) {
	return m.scanner.Scan(ctx, m.cfg.Site.LocalPath(), "")
}

// Menus scans the content root and builds the navigation menu.
func (m *Module) Menus(ctx context.Context) (map[string]*MenuItem, error) {
	root, err := m.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return m.menus.Build(ctx, root)
}

// Sitemap scans the content root and returns one entry per file.
func (m *Module) Sitemap(ctx context.Context) ([]SitemapEntry, error) {
	root, err := m.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return m.sitemap.Build(ctx, root)
}

// SitemapXML renders the sitemap as sitemap.xml.
func (m *Module) SitemapXML(ctx context.Context) (string, error) {
	entries, err := m.Sitemap(ctx)
	if err != nil {
		return "", err
	}
	return sitemap.RenderXML(entries), nil
}

// Robots renders robots.txt for the production host.
func (m *Module) Robots() string {
	return sitemap.RenderRobots(m.cfg.Site.ProdHost)
}

// ResolvePage assembles the page at webPath, expanding its content list.
// Missing bodies produce placeholder content rather than an error; use
// ContentExists to tell the two apart.
func (m *Module) ResolvePage(ctx context.Context, webPath string) (*Page, error) {
	return m.resolver.ResolvePage(ctx, webPath)
}

// FindPage resolves webPath, failing with a content not found error when no
// body file exists.
func (m *Module) FindPage(ctx context.Context, webPath string) (*Page, error) {
	if !m.resolver.ContentExists(webPath) {
		return nil, cmserrors.ContentNotFound(webPath)
	}
	return m.resolver.ResolvePage(ctx, webPath)
}

// ListDirectory returns the page metadata of every item in webDir.
func (m *Module) ListDirectory(ctx context.Context, webDir string) ([]PageMetadata, error) {
	return m.resolver.ListDirectory(ctx, webDir)
}

// ContentExists reports whether webPath has a body file.
func (m *Module) ContentExists(webPath string) bool {
	return m.resolver.ContentExists(webPath)
}

// DirectoryExists reports whether webPath names a directory.
func (m *Module) DirectoryExists(webPath string) bool {
	return m.resolver.DirectoryExists(webPath)
}

// SiteCommands builds the go-command handlers bound to this module.
func (m *Module) SiteCommands() (*sitecmd.HandlerSet, error) {
	deps := sitecmd.Dependencies{
		LocalRoot: m.cfg.Site.LocalPath(),
		ProdHost:  m.cfg.Site.ProdHost,
		Sitemap:   m,
		Scanner:   m.scanner,
		Store:     m.store,
	}
	if m.recorder != nil {
		deps.Recorder = m.recorder
	}
	return sitecmd.RegisterSiteCommands(nil, deps, m.provider)
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{Level: cfg.Level, Format: cfg.Format})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}
