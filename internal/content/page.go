package content

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-flatcms/internal/metadata"
)

// Body is one body file of a page.
type Body struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Body     string    `json:"body"`
	// Checksum is the xxh3 digest of the raw file, empty for placeholders.
	Checksum    string         `json:"checksum,omitempty"`
	FrontMatter map[string]any `json:"front_matter,omitempty"`
}

// Page is a fully resolved content item.
type Page struct {
	ID          uuid.UUID                `json:"id"`
	WebPath     string                   `json:"web_path"`
	Anchor      string                   `json:"anchor"`
	Markdown    Body                     `json:"markdown"`
	HTML        *Body                    `json:"html"`
	JSON        *Body                    `json:"json"`
	List        []*Page                  `json:"list"`
	Meta        metadata.PageMetadata    `json:"meta"`
	SectionMeta metadata.SectionMetadata `json:"section_meta"`
}
