package markdown

import (
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Rendered is the output of Service.Render.
type Rendered struct {
	HTML        string
	FrontMatter map[string]any
}

// Service strips frontmatter from Markdown sources and renders the rest.
type Service struct {
	parser interfaces.MarkdownParser
	logger interfaces.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithParser swaps the Markdown engine.
func WithParser(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService returns a service backed by a GoldmarkParser configured with opts.
func NewService(opts interfaces.ParseOptions, options ...ServiceOption) *Service {
	s := &Service{
		parser: NewGoldmarkParser(opts),
		logger: logging.NoOp(),
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	return s
}

// Render converts source to HTML. Rendering never fails: malformed
// frontmatter leaves the source intact, and an engine error falls back to the
// raw Markdown text.
func (s *Service) Render(source []byte) Rendered {
	frontMatter, body, err := SplitFrontMatter(source)
	if err != nil {
		logging.WithError(s.logger, err).Warn("markdown.frontmatter.invalid")
		frontMatter, body = nil, source
	}

	html, err := s.parser.Parse(body)
	if err != nil {
		logging.WithError(s.logger, err).Warn("markdown.render.failed")
		return Rendered{HTML: string(body), FrontMatter: frontMatter}
	}
	return Rendered{HTML: string(html), FrontMatter: frontMatter}
}
