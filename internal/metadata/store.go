package metadata

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Sidecar kinds reported to observers.
const (
	KindPage    = "page"
	KindSection = "section"
)

// Observer is notified about sidecar activity.
type Observer interface {
	SidecarCreated(kind string)
	SidecarParseFailed(kind string)
}

// Store reads and writes JSON sidecars next to content files.
type Store struct {
	localRoot string
	baseDir   string
	readOnly  bool
	logger    interfaces.Logger
	observer  Observer

	// one mutex per sidecar path
	locks sync.Map
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadOnly stops GetOrCreatePage from persisting synthesized metadata.
func WithReadOnly(readOnly bool) Option {
	return func(s *Store) {
		s.readOnly = readOnly
	}
}

// WithObserver registers a sidecar observer.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		s.observer = observer
	}
}

// NewStore builds a store for the content rooted at site.LocalPath().
func NewStore(site runtimeconfig.SiteConfig, opts ...Option) *Store {
	s := &Store{
		localRoot: site.LocalPath(),
		baseDir:   site.BaseDir,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ReadOnly reports whether synthesized metadata is persisted.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// PageSidecarPath returns the .content_meta path for a content path.
func PageSidecarPath(contentPath string) string {
	return webpath.SetExtension(contentPath, PageExtension)
}

// SectionSidecarPath returns the .menu_meta path for a directory.
func SectionSidecarPath(dirPath string) string {
	return filepath.Clean(dirPath) + "." + SectionExtension
}

// ReadPage loads the page sidecar of contentPath. The boolean reports whether
// a sidecar exists. A sidecar that fails to parse yields the parse error
// default instead of an error.
func (s *Store) ReadPage(contentPath string) (PageMetadata, bool, error) {
	sidecar := PageSidecarPath(contentPath)
	data, err := os.ReadFile(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPageMetadata(), false, nil
	}
	if err != nil {
		return PageMetadata{}, false, cmserrors.Filesystem(err, "read", sidecar)
	}

	meta, err := DecodePage(data)
	if err != nil {
		s.parseFailed(KindPage, sidecar, err)
		return ParseErrorPageMetadata(err), true, nil
	}
	return meta, true, nil
}

// GetOrCreatePage returns the page sidecar of contentPath, synthesizing a
// default when none exists. The default takes its title from the file stem
// and its path from the web path, and is written to disk unless the store is
// read only.
func (s *Store) GetOrCreatePage(contentPath string) (PageMetadata, error) {
	sidecar := PageSidecarPath(contentPath)
	unlock := s.lock(sidecar)
	defer unlock()

	meta, exists, err := s.ReadPage(contentPath)
	if err != nil || exists {
		return meta, err
	}

	meta = DefaultPageMetadata()
	meta.Title = webpath.Stem(sidecar)
	if web, err := webpath.FromLocal(sidecar, s.localRoot, s.baseDir); err == nil {
		meta.Path = web
	} else {
		logging.WithError(s.logger, err).Warn("metadata.web_path_unresolved", "sidecar", sidecar)
	}

	if s.readOnly {
		s.logger.Debug("metadata.write_skipped", "sidecar", sidecar)
		return meta, nil
	}
	if err := s.write(sidecar, meta.normalized()); err != nil {
		return PageMetadata{}, err
	}
	if s.observer != nil {
		s.observer.SidecarCreated(KindPage)
	}
	s.logger.Info("metadata.page.created", "sidecar", sidecar, "path", meta.Path)
	return meta, nil
}

// ReadSection loads the section sidecar of dirPath, falling back to the
// default when it is missing or unparsable. It never writes.
func (s *Store) ReadSection(dirPath string) (SectionMetadata, error) {
	sidecar := SectionSidecarPath(dirPath)
	data, err := os.ReadFile(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSectionMetadata(), nil
	}
	if err != nil {
		return SectionMetadata{}, cmserrors.Filesystem(err, "read", sidecar)
	}

	meta, err := DecodeSection(data)
	if err != nil {
		s.parseFailed(KindSection, sidecar, err)
		return DefaultSectionMetadata(), nil
	}
	return meta, nil
}

// WritePage persists meta as the page sidecar of contentPath.
func (s *Store) WritePage(contentPath string, meta PageMetadata) error {
	sidecar := PageSidecarPath(contentPath)
	unlock := s.lock(sidecar)
	defer unlock()
	return s.write(sidecar, meta.normalized())
}

// WriteSection persists meta as the section sidecar of dirPath.
func (s *Store) WriteSection(dirPath string, meta SectionMetadata) error {
	sidecar := SectionSidecarPath(dirPath)
	unlock := s.lock(sidecar)
	defer unlock()
	return s.write(sidecar, meta.normalized())
}

func (s *Store) write(sidecar string, value any) error {
	data, err := Encode(value)
	if err != nil {
		return cmserrors.Filesystem(err, "encode", sidecar)
	}
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		return cmserrors.Filesystem(err, "write", sidecar)
	}
	return nil
}

func (s *Store) parseFailed(kind, sidecar string, err error) {
	if s.observer != nil {
		s.observer.SidecarParseFailed(kind)
	}
	logging.WithError(s.logger, cmserrors.MetadataParse(err, sidecar)).
		Warn("metadata.parse_failed", "kind", kind, "sidecar", sidecar)
}

func (s *Store) lock(key string) func() {
	value, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
