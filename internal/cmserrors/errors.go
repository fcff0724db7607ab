// Package cmserrors defines the error taxonomy shared by the flatcms packages.
// Every constructor returns a *goerrors.Error tagged with one of the
// categories below so callers can branch with goerrors.IsCategory.
package cmserrors

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CategoryFilesystem      goerrors.Category = "filesystem"
	CategoryMetadataParse   goerrors.Category = "metadata_parse"
	CategoryConfiguration   goerrors.Category = "configuration"
	CategoryContentNotFound goerrors.Category = "content_not_found"
	CategoryCycleDetected   goerrors.Category = "cycle_detected"
)

const (
	codeFilesystem      = "FILESYSTEM_ERROR"
	codeMetadataParse   = "METADATA_PARSE_ERROR"
	codeConfiguration   = "CONFIGURATION_ERROR"
	codeContentNotFound = "CONTENT_NOT_FOUND"
	codeCycleDetected   = "CYCLE_DETECTED"
)

var (
	// ErrCycle is the cause attached to cycle errors built without an underlying error.
	ErrCycle = errors.New("recursive traversal revisited an ancestor")
	// ErrMaxDepth is the cause attached when a traversal exceeds its depth limit.
	ErrMaxDepth = errors.New("recursive traversal exceeded maximum depth")
	// ErrContentNotFound is the cause attached to content lookups that matched no body file.
	ErrContentNotFound = errors.New("content not found")
)

// Filesystem wraps an I/O failure on a required read or write.
func Filesystem(err error, op, path string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, CategoryFilesystem, fmt.Sprintf("%s %s", op, path)).
		WithTextCode(codeFilesystem)
}

// MetadataParse wraps a sidecar decode or schema failure.
func MetadataParse(err error, path string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, CategoryMetadataParse, "parse sidecar "+path).
		WithTextCode(codeMetadataParse)
}

// Configuration wraps an invalid configuration value.
func Configuration(err error, field string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, CategoryConfiguration, "invalid configuration: "+field).
		WithTextCode(codeConfiguration)
}

// ContentNotFound reports a web path with no markdown, HTML or JSON body.
func ContentNotFound(webPath string) error {
	return goerrors.Wrap(ErrContentNotFound, CategoryContentNotFound, "content not found: "+webPath).
		WithTextCode(codeContentNotFound)
}

// CycleDetected reports a traversal that revisited path or went past the
// depth limit. cause is ErrCycle or ErrMaxDepth.
func CycleDetected(cause error, path string) error {
	if cause == nil {
		cause = ErrCycle
	}
	return goerrors.Wrap(cause, CategoryCycleDetected, "cycle detected at "+path).
		WithTextCode(codeCycleDetected)
}

func IsFilesystem(err error) bool      { return goerrors.IsCategory(err, CategoryFilesystem) }
func IsMetadataParse(err error) bool   { return goerrors.IsCategory(err, CategoryMetadataParse) }
func IsConfiguration(err error) bool   { return goerrors.IsCategory(err, CategoryConfiguration) }
func IsContentNotFound(err error) bool { return goerrors.IsCategory(err, CategoryContentNotFound) }
func IsCycleDetected(err error) bool   { return goerrors.IsCategory(err, CategoryCycleDetected) }
