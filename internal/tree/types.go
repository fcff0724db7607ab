package tree

import (
	"sort"
	"time"
)

// FileMeta captures the filesystem timestamps and size of one entry.
type FileMeta struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

// DirTree is one scanned directory. Files are keyed by filename stem and
// directories by their full name.
type DirTree struct {
	AbsolutePath string              `json:"absolute_path"`
	RelativePath string              `json:"relative_path"`
	DirMeta      FileMeta            `json:"dir_meta"`
	Files        map[string]FileMeta `json:"files"`
	Directories  map[string]*DirTree `json:"directories"`
}

// Stats counts the entries of a tree, the root directory included.
type Stats struct {
	Directories int `json:"directories"`
	Files       int `json:"files"`
}

// SortedFileNames returns the file stems in lexical order.
func (t *DirTree) SortedFileNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Files))
	for name := range t.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedDirectoryNames returns the subdirectory names in lexical order.
func (t *DirTree) SortedDirectoryNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Directories))
	for name := range t.Directories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats walks the tree and counts directories and files.
func (t *DirTree) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	stats := Stats{Directories: 1, Files: len(t.Files)}
	for _, child := range t.Directories {
		childStats := child.Stats()
		stats.Directories += childStats.Directories
		stats.Files += childStats.Files
	}
	return stats
}

// FilesInTree lists every file of the tree as "relative/stem", sorted.
func FilesInTree(t *DirTree) []string {
	var files []string
	collectFiles(t, &files)
	sort.Strings(files)
	return files
}

func collectFiles(t *DirTree, out *[]string) {
	if t == nil {
		return
	}
	for name := range t.Files {
		*out = append(*out, t.RelativePath+"/"+name)
	}
	for _, child := range t.Directories {
		collectFiles(child, out)
	}
}
