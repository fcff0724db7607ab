// Package config loads the flatcms JSON configuration file through viper,
// layering defaults, the file, and FLATCMS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
)

const (
	// EnvPrefix prefixes every environment override, e.g. FLATCMS_SITE_PROD_HOST.
	EnvPrefix = "FLATCMS"
	dirName   = "flatcms"
	fileName  = "default.json"
)

// ErrConfigExists is returned by WriteDefault when the target file is already present.
var ErrConfigExists = errors.New("flatcms config: default config already exists")

// siteKeys may also appear at the top level of a config file, the layout
// written by older releases.
var siteKeys = []string{"prod_host", "xml_priority", "base_dir", "local_content_dir"}

// DefaultPath returns <user config dir>/flatcms/default.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", cmserrors.Configuration(err, "config_dir")
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads the config file at path. An empty path loads defaults and
// environment overrides only. The result is validated.
func Load(path string) (runtimeconfig.Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return runtimeconfig.Config{}, cmserrors.Filesystem(err, "read", path)
			}
			return runtimeconfig.Config{}, cmserrors.Configuration(err, "config_file")
		}
		for _, key := range siteKeys {
			if v.InConfig(key) && !v.InConfig("site."+key) {
				v.SetDefault("site."+key, v.Get(key))
			}
		}
	}

	var cfg runtimeconfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return runtimeconfig.Config{}, cmserrors.Configuration(err, "config")
	}
	if err := cfg.Validate(); err != nil {
		return runtimeconfig.Config{}, cmserrors.Configuration(err, "config")
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to dir/default.json and
// returns the file path. An empty dir selects the user config directory.
// Existing files are never overwritten.
func WriteDefault(dir string) (string, error) {
	target := filepath.Join(dir, fileName)
	if dir == "" {
		path, err := DefaultPath()
		if err != nil {
			return "", err
		}
		target = path
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", cmserrors.Filesystem(err, "mkdir", filepath.Dir(target))
	}
	if _, err := os.Stat(target); err == nil {
		return "", cmserrors.Configuration(fmt.Errorf("%w: %s", ErrConfigExists, target), "config_file")
	}

	v := newViper()
	v.SetConfigType("json")
	if err := v.WriteConfigAs(target); err != nil {
		return "", cmserrors.Filesystem(err, "write", target)
	}
	return target, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, runtimeconfig.DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, cfg runtimeconfig.Config) {
	v.SetDefault("site.prod_host", cfg.Site.ProdHost)
	v.SetDefault("site.xml_priority", cfg.Site.XMLPriority)
	v.SetDefault("site.base_dir", cfg.Site.BaseDir)
	v.SetDefault("site.local_content_dir", cfg.Site.LocalContentDir)
	v.SetDefault("scan.workers", cfg.Scan.Workers)
	v.SetDefault("scan.max_depth", cfg.Scan.MaxDepth)
	v.SetDefault("resolve.max_depth", cfg.Resolve.MaxDepth)
	v.SetDefault("resolve.read_only", cfg.Resolve.ReadOnly)
	v.SetDefault("markdown.extensions", []string{})
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.safe_mode", cfg.Markdown.SafeMode)
	v.SetDefault("markdown.highlight_style", cfg.Markdown.HighlightStyle)
	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.namespace", cfg.Metrics.Namespace)
}
