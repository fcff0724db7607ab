package menus

import (
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-flatcms/internal/metadata"
)

// MenuItem is one directory in the navigation menu.
type MenuItem struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	MenuMeta      metadata.SectionMetadata `json:"menu_meta"`
	NumberOfFiles uint32                   `json:"number_of_files"`
	RelativePath  string                   `json:"relative_path"`
	Children      map[string]*MenuItem     `json:"children"`
}

// SortedChildren returns the children ordered by weight, then name.
func (m *MenuItem) SortedChildren() []*MenuItem {
	if m == nil {
		return nil
	}
	return Sorted(m.Children)
}

// Sorted orders a menu level by weight, then name.
func Sorted(items map[string]*MenuItem) []*MenuItem {
	out := make([]*MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuMeta.Weight != out[j].MenuMeta.Weight {
			return out[i].MenuMeta.Weight < out[j].MenuMeta.Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}
