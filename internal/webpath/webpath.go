// Package webpath converts between filesystem paths under the content root
// and the web paths exposed to visitors.
package webpath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Delimiter separates segments of web paths and relative tree paths.
const Delimiter = "/"

// ErrBaseDirDelimiter is returned when the configured base dir does not end
// with Delimiter.
var ErrBaseDirDelimiter = errors.New("base dir is missing the trailing directory delimiter")

// ValidateBaseDir checks the base dir ends with the path delimiter.
func ValidateBaseDir(baseDir string) error {
	if !strings.HasSuffix(baseDir, Delimiter) {
		return fmt.Errorf("%w: %q", ErrBaseDirDelimiter, baseDir)
	}
	return nil
}

// Prefix strips the base dir from tree relative paths.
type Prefix struct {
	candidates []string
}

// NewPrefix builds a Prefix for baseDir. The tree root's own relative path
// can be passed as a fallback candidate: it is what the scanner records for
// the base dir and differs from baseDir when baseDir has several segments or
// is just the delimiter.
func NewPrefix(baseDir string, rootRelative ...string) (Prefix, error) {
	if err := ValidateBaseDir(baseDir); err != nil {
		return Prefix{}, err
	}
	var p Prefix
	add := func(value string) {
		value = strings.Trim(value, Delimiter)
		if value == "" {
			return
		}
		for _, existing := range p.candidates {
			if existing == value {
				return
			}
		}
		p.candidates = append(p.candidates, value)
	}
	trimmed := strings.Trim(baseDir, Delimiter)
	add(trimmed)
	if i := strings.LastIndex(trimmed, Delimiter); i >= 0 {
		add(trimmed[i+1:])
	}
	for _, rel := range rootRelative {
		add(rel)
	}
	return p, nil
}

// Strip removes the base dir from a relative path. The base dir itself maps
// to "" and anything below it loses the base segment and its delimiter, so
// "content/blog" becomes "blog". Paths outside the base dir are returned
// without leading or trailing delimiters.
func (p Prefix) Strip(relative string) string {
	rel := strings.Trim(relative, Delimiter)
	for _, candidate := range p.candidates {
		if rel == candidate {
			return ""
		}
		if strings.HasPrefix(rel, candidate+Delimiter) {
			return rel[len(candidate)+1:]
		}
	}
	return rel
}

// Stem returns the file name without its last extension. Names whose only dot
// is the leading one are returned unchanged.
func Stem(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// SetExtension replaces the extension of the last path element with ext, or
// removes it when ext is empty.
func SetExtension(p, ext string) string {
	dir, file := filepath.Split(p)
	stem := file
	if i := strings.LastIndexByte(file, '.'); i > 0 {
		stem = file[:i]
	}
	if ext == "" {
		return dir + stem
	}
	return dir + stem + "." + strings.TrimPrefix(ext, ".")
}

// ToLocal maps a web path onto the content root. The web path keeps its
// leading delimiter, so "/blog/post" under "/srv/site/content/" becomes
// "/srv/site/content/blog/post". Dot segments cannot climb above the root.
func ToLocal(localRoot, webPath string) string {
	cleaned := path.Clean(Delimiter + webPath)
	return filepath.Join(localRoot, filepath.FromSlash(cleaned))
}

// FromLocal maps a local path back to its web path, dropping the extension.
// The content root is tried first; otherwise everything up to and including
// the first occurrence of baseDir is replaced by the delimiter.
func FromLocal(localPath, localRoot, baseDir string) (string, error) {
	clean := filepath.ToSlash(SetExtension(filepath.Clean(localPath), ""))
	root := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(localRoot)), Delimiter)

	if root != "" && (clean == root || strings.HasPrefix(clean, root+Delimiter)) {
		return Delimiter + strings.TrimPrefix(clean[len(root):], Delimiter), nil
	}
	if baseDir != Delimiter {
		if i := strings.Index(clean, baseDir); i >= 0 {
			return Delimiter + clean[i+len(baseDir):], nil
		}
	}
	return "", fmt.Errorf("path %s is outside the content root %s", localPath, localRoot)
}

// Join joins web path segments with Delimiter, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if trimmed := strings.Trim(segment, Delimiter); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, Delimiter)
}
