package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const (
	rootModule     = "flatcms"
	treeModule     = "flatcms.tree"
	metadataModule = "flatcms.metadata"
	menusModule    = "flatcms.menus"
	sitemapModule  = "flatcms.sitemap"
	contentModule  = "flatcms.content"
)

const (
	fieldWebPath   = "web_path"
	fieldLocalPath = "local_path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered by component.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TreeLogger returns the logger namespace reserved for filesystem scans.
func TreeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, treeModule)
}

// MetadataLogger returns the logger namespace reserved for sidecar I/O.
func MetadataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, metadataModule)
}

// MenusLogger returns the logger namespace reserved for menu building.
func MenusLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, menusModule)
}

// SitemapLogger returns the logger namespace reserved for sitemap building.
func SitemapLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sitemapModule)
}

// ContentLogger returns the logger namespace reserved for page resolution.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// WithPathContext enriches the logger with the web and local paths of the
// content item being processed. Empty values are ignored.
func WithPathContext(logger interfaces.Logger, webPath, localPath string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(webPath); trimmed != "" {
		fields[fieldWebPath] = trimmed
	}
	if trimmed := strings.TrimSpace(localPath); trimmed != "" {
		fields[fieldLocalPath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
