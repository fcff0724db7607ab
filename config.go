package flatcms

import "github.com/goliatone/go-flatcms/internal/runtimeconfig"

var (
	ErrProdHostRequired         = runtimeconfig.ErrProdHostRequired
	ErrProdHostInvalid          = runtimeconfig.ErrProdHostInvalid
	ErrXMLPriorityInvalid       = runtimeconfig.ErrXMLPriorityInvalid
	ErrBaseDirTrailingDelimiter = runtimeconfig.ErrBaseDirTrailingDelimiter
	ErrLocalContentDirRequired  = runtimeconfig.ErrLocalContentDirRequired
	ErrScanWorkersInvalid       = runtimeconfig.ErrScanWorkersInvalid
	ErrMaxDepthInvalid          = runtimeconfig.ErrMaxDepthInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrMetricsNamespaceRequired = runtimeconfig.ErrMetricsNamespaceRequired
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	ScanConfig           = runtimeconfig.ScanConfig
	ResolveConfig        = runtimeconfig.ResolveConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	MetricsConfig        = runtimeconfig.MetricsConfig
)

// DefaultConfig returns the configuration written by `flatcms init`.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
