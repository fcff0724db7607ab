package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-flatcms/internal/webpath"
)

var ErrProdHostRequired = errors.New("flatcms config: prod host is required")
var ErrProdHostInvalid = errors.New("flatcms config: prod host must be an absolute URL")
var ErrXMLPriorityInvalid = errors.New("flatcms config: xml priority must be a number between 0.0 and 1.0")

// ErrBaseDirTrailingDelimiter wraps webpath.ErrBaseDirDelimiter for config callers.
var ErrBaseDirTrailingDelimiter = fmt.Errorf("flatcms config: %w", webpath.ErrBaseDirDelimiter)
var ErrLocalContentDirRequired = errors.New("flatcms config: local content directory is required")
var ErrScanWorkersInvalid = errors.New("flatcms config: scan workers must be zero or positive")
var ErrMaxDepthInvalid = errors.New("flatcms config: max depth must be positive")
var ErrLoggingProviderRequired = errors.New("flatcms config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("flatcms config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("flatcms config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("flatcms config: logging format is invalid")
var ErrMetricsNamespaceRequired = errors.New("flatcms config: metrics namespace is required when metrics are enabled")

const (
	DefaultProdHost        = "https://localhost:8000"
	DefaultXMLPriority     = "0.64"
	DefaultBaseDir         = "/"
	DefaultLocalContentDir = "/"
	DefaultScanMaxDepth    = 64
	DefaultResolveMaxDepth = 32
)

// Config aggregates every knob of the flat-file CMS.
type Config struct {
	Site     SiteConfig           `json:"site" mapstructure:"site"`
	Scan     ScanConfig           `json:"scan" mapstructure:"scan"`
	Resolve  ResolveConfig        `json:"resolve" mapstructure:"resolve"`
	Markdown MarkdownParserConfig `json:"markdown" mapstructure:"markdown"`
	Logging  LoggingConfig        `json:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig        `json:"metrics" mapstructure:"metrics"`
}

// SiteConfig locates the content on disk and describes the public host.
type SiteConfig struct {
	ProdHost        string `json:"prod_host" mapstructure:"prod_host"`
	XMLPriority     string `json:"xml_priority" mapstructure:"xml_priority"`
	BaseDir         string `json:"base_dir" mapstructure:"base_dir"`
	LocalContentDir string `json:"local_content_dir" mapstructure:"local_content_dir"`
}

// LocalPath is the directory that web paths resolve against.
func (s SiteConfig) LocalPath() string {
	return s.LocalContentDir + s.BaseDir
}

// ScanConfig bounds the directory scanner.
type ScanConfig struct {
	// Workers caps concurrent subdirectory scans. Zero means runtime.NumCPU().
	Workers  int `json:"workers" mapstructure:"workers"`
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
}

// ResolveConfig bounds content resolution.
type ResolveConfig struct {
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
	// ReadOnly keeps synthesized metadata in memory instead of writing sidecars.
	ReadOnly bool `json:"read_only" mapstructure:"read_only"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions     []string `json:"extensions" mapstructure:"extensions"`
	HardWraps      bool     `json:"hard_wraps" mapstructure:"hard_wraps"`
	SafeMode       bool     `json:"safe_mode" mapstructure:"safe_mode"`
	HighlightStyle string   `json:"highlight_style" mapstructure:"highlight_style"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Level    string `json:"level" mapstructure:"level"`
	Format   string `json:"format" mapstructure:"format"`
}

// MetricsConfig toggles prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// DefaultConfig returns the configuration written by `flatcms init`.
func DefaultConfig() Config {
	return Config{
		Site: DefaultSiteConfig(),
		Scan: ScanConfig{
			Workers:  0,
			MaxDepth: DefaultScanMaxDepth,
		},
		Resolve: ResolveConfig{
			MaxDepth: DefaultResolveMaxDepth,
		},
		Markdown: MarkdownParserConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Metrics: MetricsConfig{
			Namespace: "flatcms",
		},
	}
}

// DefaultSiteConfig returns the site section defaults.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		ProdHost:        DefaultProdHost,
		XMLPriority:     DefaultXMLPriority,
		BaseDir:         DefaultBaseDir,
		LocalContentDir: DefaultLocalContentDir,
	}
}

// Validate performs consistency checks and returns the first violation.
func (cfg Config) Validate() error {
	if err := cfg.Site.Validate(); err != nil {
		return err
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrScanWorkersInvalid, cfg.Scan.Workers)
	}
	if cfg.Scan.MaxDepth <= 0 {
		return fmt.Errorf("%w: scan %d", ErrMaxDepthInvalid, cfg.Scan.MaxDepth)
	}
	if cfg.Resolve.MaxDepth <= 0 {
		return fmt.Errorf("%w: resolve %d", ErrMaxDepthInvalid, cfg.Resolve.MaxDepth)
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		return ErrMetricsNamespaceRequired
	}
	return nil
}

// Validate checks the site section.
func (s SiteConfig) Validate() error {
	if strings.TrimSpace(s.ProdHost) == "" {
		return ErrProdHostRequired
	}
	if err := validation.Validate(s.ProdHost, validation.By(absoluteURL)); err != nil {
		return fmt.Errorf("%w: %s", ErrProdHostInvalid, s.ProdHost)
	}
	if err := validation.Validate(s.XMLPriority, validation.Required, validation.By(validPriority)); err != nil {
		return fmt.Errorf("%w: %q", ErrXMLPriorityInvalid, s.XMLPriority)
	}
	if err := webpath.ValidateBaseDir(s.BaseDir); err != nil {
		return fmt.Errorf("%w: %q", ErrBaseDirTrailingDelimiter, s.BaseDir)
	}
	if strings.TrimSpace(s.LocalContentDir) == "" {
		return ErrLocalContentDirRequired
	}
	return nil
}

func absoluteURL(value any) error {
	raw, _ := value.(string)
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ErrProdHostInvalid
	}
	return nil
}

func validPriority(value any) error {
	raw, _ := value.(string)
	priority, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return err
	}
	if priority < 0 || priority > 1 {
		return ErrXMLPriorityInvalid
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
