package metadata

import (
	_ "embed"
	"encoding/json"

	"github.com/goliatone/go-flatcms/internal/validation"
)

//go:embed schemas/page.schema.json
var pageSchemaJSON []byte

//go:embed schemas/section.schema.json
var sectionSchemaJSON []byte

var (
	pageSchema    = validation.MustCompile("page.schema.json", pageSchemaJSON)
	sectionSchema = validation.MustCompile("section.schema.json", sectionSchemaJSON)
)

// DecodePage parses a page sidecar. Documents with missing, unknown or
// mistyped fields are rejected.
func DecodePage(data []byte) (PageMetadata, error) {
	var meta PageMetadata
	if err := decodeStrict(pageSchema, data, &meta); err != nil {
		return PageMetadata{}, err
	}
	return meta, nil
}

// DecodeSection parses a section sidecar with the same strictness as DecodePage.
func DecodeSection(data []byte) (SectionMetadata, error) {
	var meta SectionMetadata
	if err := decodeStrict(sectionSchema, data, &meta); err != nil {
		return SectionMetadata{}, err
	}
	return meta, nil
}

// Encode renders a sidecar as indented JSON.
func Encode(value any) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeStrict(schema *validation.Schema, data []byte, target any) error {
	if err := schema.ValidateJSON(data); err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
