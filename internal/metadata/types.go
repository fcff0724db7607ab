package metadata

// Sidecar extensions. They replace the last extension of the content path.
const (
	PageExtension    = "content_meta"
	SectionExtension = "menu_meta"
)

// Title and description substituted when a page sidecar cannot be parsed.
const (
	ParseErrorTitle             = "Error parsing metadata file"
	parseErrorDescriptionPrefix = "JSON Parse Error: "
)

// PageMetadata describes one content item. Every field is required on disk.
type PageMetadata struct {
	Title               string   `json:"title"`
	Path                string   `json:"path"`
	ContentIcon         string   `json:"content_icon"`
	Description         string   `json:"description"`
	Weight              uint32   `json:"weight"`
	Author              string   `json:"author"`
	License             string   `json:"license"`
	ContentList         []string `json:"content_list"`
	ContentType         string   `json:"content_type"`
	ContentClass        string   `json:"content_class"`
	TemplateOverride    string   `json:"template_override"`
	JavascriptInclude   []string `json:"javascript_include"`
	JavascriptInline    string   `json:"javascript_inline"`
	CSSInclude          []string `json:"css_include"`
	CSSInline           string   `json:"css_inline"`
	CreatedTimeDefault  string   `json:"created_time_default"`
	ModifiedTimeDefault string   `json:"modified_time_default"`
}

// DefaultPageMetadata returns the metadata used when no sidecar is usable.
func DefaultPageMetadata() PageMetadata {
	return PageMetadata{
		Title:               "Default ContentMeta struct title",
		Path:                "/",
		ContentIcon:         "/static/images/content_default_icon.svg",
		Description:         "Default description value",
		Weight:              100,
		Author:              "Default",
		License:             "cc-by-sa",
		ContentList:         []string{},
		ContentType:         "page",
		ContentClass:        "basic-page",
		JavascriptInclude:   []string{},
		CSSInclude:          []string{},
		CreatedTimeDefault:  "markdown",
		ModifiedTimeDefault: "markdown",
	}
}

// ParseErrorPageMetadata returns the default metadata annotated with err.
func ParseErrorPageMetadata(err error) PageMetadata {
	meta := DefaultPageMetadata()
	meta.Title = ParseErrorTitle
	meta.Description = parseErrorDescriptionPrefix + err.Error()
	return meta
}

// SectionMetadata describes a directory in the navigation menu.
type SectionMetadata struct {
	MenuIcon                 string   `json:"menu_icon"`
	Description              string   `json:"description"`
	Weight                   uint32   `json:"weight"`
	SectionTemplate          string   `json:"section_template"`
	TemplateOverride         string   `json:"template_override"`
	ContentType              string   `json:"content_type"`
	SectionClass             string   `json:"section_class"`
	ContentClass             string   `json:"content_class"`
	SectionJavascriptInclude []string `json:"section_javascript_include"`
	JavascriptInclude        []string `json:"javascript_include"`
	JavascriptInline         string   `json:"javascript_inline"`
	SectionCSSInclude        []string `json:"section_css_include"`
	CSSInclude               []string `json:"css_include"`
	CSSInline                string   `json:"css_inline"`
}

// DefaultSectionMetadata returns the metadata used for directories without a
// usable sidecar.
func DefaultSectionMetadata() SectionMetadata {
	return SectionMetadata{
		MenuIcon:                 "/static/images/menu_default_icon.svg",
		Description:              "Menu default description.",
		Weight:                   100,
		SectionTemplate:          "article",
		ContentType:              "directory",
		SectionClass:             "section",
		ContentClass:             "directory-page",
		SectionJavascriptInclude: []string{},
		JavascriptInclude:        []string{},
		SectionCSSInclude:        []string{},
		CSSInclude:               []string{},
	}
}

// normalized replaces nil lists with empty ones so the encoded sidecar passes
// strict decoding.
func (m PageMetadata) normalized() PageMetadata {
	m.ContentList = orEmpty(m.ContentList)
	m.JavascriptInclude = orEmpty(m.JavascriptInclude)
	m.CSSInclude = orEmpty(m.CSSInclude)
	return m
}

func (m SectionMetadata) normalized() SectionMetadata {
	m.SectionJavascriptInclude = orEmpty(m.SectionJavascriptInclude)
	m.JavascriptInclude = orEmpty(m.JavascriptInclude)
	m.SectionCSSInclude = orEmpty(m.SectionCSSInclude)
	m.CSSInclude = orEmpty(m.CSSInclude)
	return m
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
