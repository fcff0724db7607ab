package interfaces

// MarkdownParser converts Markdown source into HTML. Implementations must be
// safe for concurrent use and should return best-effort HTML for malformed
// input instead of failing.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Field names stay readable so
// they can be bound from configuration files and CLI flags.
type ParseOptions struct {
	Extensions     []string
	HardWraps      bool
	SafeMode       bool
	HighlightStyle string
}
