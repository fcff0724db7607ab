package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	writeSitemapMessageType   = "flatcms.site.write_sitemap"
	writeRobotsMessageType    = "flatcms.site.write_robots"
	ensureMetadataMessageType = "flatcms.site.ensure_metadata"
)

// WriteSitemapCommand scans the content root and writes sitemap.xml to OutputPath.
type WriteSitemapCommand struct {
	// OutputPath is the file the rendered XML is written to.
	OutputPath string `json:"output_path"`
}

// Type implements command.Message.
func (WriteSitemapCommand) Type() string { return writeSitemapMessageType }

// Validate ensures an output file is named.
func (cmd WriteSitemapCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputPath, validation.Required, validation.By(outputFile("flatcms.site.write_sitemap.output_path_invalid"))),
	)
}

// WriteRobotsCommand writes a robots.txt that points crawlers at the sitemap.
type WriteRobotsCommand struct {
	OutputPath string `json:"output_path"`
}

// Type implements command.Message.
func (WriteRobotsCommand) Type() string { return writeRobotsMessageType }

// Validate ensures an output file is named.
func (cmd WriteRobotsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputPath, validation.Required, validation.By(outputFile("flatcms.site.write_robots.output_path_invalid"))),
	)
}

// EnsureMetadataCommand walks every content file under the web directory
// Directory and creates the page sidecars that are missing. With DryRun set
// the missing sidecars are only counted.
type EnsureMetadataCommand struct {
	// Directory is a web path; empty means the site root.
	Directory string `json:"directory,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
	// Report receives the outcome when set.
	Report *EnsureMetadataReport `json:"-"`
}

// EnsureMetadataReport counts the pages visited by an EnsureMetadataCommand.
type EnsureMetadataReport struct {
	Pages    int      `json:"pages"`
	Existing int      `json:"existing"`
	Created  []string `json:"created"`
	Missing  []string `json:"missing"`
}

// Type implements command.Message.
func (EnsureMetadataCommand) Type() string { return ensureMetadataMessageType }

// Validate rejects directories that climb out of the content root.
func (cmd EnsureMetadataCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(func(value any) error {
			dir, _ := value.(string)
			for _, segment := range strings.Split(dir, "/") {
				if segment == ".." {
					return validation.NewError("flatcms.site.ensure_metadata.directory_invalid", "directory must stay inside the content root")
				}
			}
			return nil
		})),
	)
}

func outputFile(code string) validation.RuleFunc {
	return func(value any) error {
		path, _ := value.(string)
		trimmed := strings.TrimSpace(path)
		if trimmed == "" || strings.HasSuffix(trimmed, "/") {
			return validation.NewError(code, "output path must name a file")
		}
		return nil
	}
}
