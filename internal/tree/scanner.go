package tree

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goliatone/go-flatcms/internal/cmserrors"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/webpath"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxDepth bounds recursion when no explicit limit is configured.
const DefaultMaxDepth = 64

var statFn = os.Stat

// Observer receives one notification per top level scan.
type Observer interface {
	ScanCompleted(root string, elapsed time.Duration, stats Stats, err error)
}

// Scanner builds DirTree values from the filesystem.
type Scanner struct {
	workers  int64
	maxDepth int
	logger   interfaces.Logger
	observer Observer
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers caps the number of subdirectories scanned concurrently.
func WithWorkers(workers int) Option {
	return func(s *Scanner) {
		if workers > 0 {
			s.workers = int64(workers)
		}
	}
}

// WithMaxDepth bounds directory recursion.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithLogger overrides the scanner logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a scan observer.
func WithObserver(observer Observer) Option {
	return func(s *Scanner) {
		s.observer = observer
	}
}

// NewScanner returns a scanner with NumCPU workers and DefaultMaxDepth.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		workers:  int64(runtime.NumCPU()),
		maxDepth: DefaultMaxDepth,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type scanState struct {
	sem *semaphore.Weighted
}

// Scan walks rootPath and returns its tree. relativePrefix is prepended to
// every relative path; pass "" for a top level scan.
func (s *Scanner) Scan(ctx context.Context, rootPath, relativePrefix string) (*DirTree, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	state := &scanState{sem: semaphore.NewWeighted(s.workers)}

	node, err := s.scan(ctx, state, rootPath, relativePrefix, nil)

	elapsed := time.Since(start)
	stats := node.Stats()
	if s.observer != nil {
		s.observer.ScanCompleted(rootPath, elapsed, stats, err)
	}
	if err != nil {
		logging.WithError(s.logger, err).Warn("tree.scan.failed", "root", rootPath)
		return nil, err
	}
	s.logger.Debug("tree.scan.completed",
		"root", rootPath,
		"directories", stats.Directories,
		"files", stats.Files,
		"duration_ms", elapsed.Milliseconds(),
	)
	return node, nil
}

func (s *Scanner) scan(ctx context.Context, state *scanState, path, prefix string, ancestors []string) (*DirTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ancestors) >= s.maxDepth {
		return nil, cmserrors.CycleDetected(cmserrors.ErrMaxDepth, path)
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, cmserrors.Filesystem(err, "resolve", path)
	}
	for _, ancestor := range ancestors {
		if ancestor == canonical {
			return nil, cmserrors.CycleDetected(cmserrors.ErrCycle, path)
		}
	}

	meta, err := Stat(path)
	if err != nil {
		return nil, cmserrors.Filesystem(err, "stat", path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, cmserrors.Filesystem(err, "read dir", path)
	}

	node := &DirTree{
		AbsolutePath: path,
		RelativePath: relativePath(prefix, path),
		DirMeta:      meta,
		Files:        make(map[string]FileMeta),
		Directories:  make(map[string]*DirTree),
	}

	var subdirs []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		info, err := statFn(full)
		if err != nil {
			return nil, cmserrors.Filesystem(err, "stat", full)
		}
		if info.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		fileMeta, err := Stat(full)
		if err != nil {
			return nil, cmserrors.Filesystem(err, "stat", full)
		}
		node.Files[webpath.Stem(entry.Name())] = fileMeta
	}
	if len(subdirs) == 0 {
		return node, nil
	}

	lineage := make([]string, len(ancestors), len(ancestors)+1)
	copy(lineage, ancestors)
	lineage = append(lineage, canonical)

	children := make([]*DirTree, len(subdirs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range subdirs {
		i, child := i, filepath.Join(path, name)
		scanChild := func() error {
			tree, err := s.scan(groupCtx, state, child, node.RelativePath, lineage)
			if err != nil {
				return err
			}
			children[i] = tree
			return nil
		}
		if state.sem.TryAcquire(1) {
			group.Go(func() error {
				defer state.sem.Release(1)
				return scanChild()
			})
			continue
		}
		if err := scanChild(); err != nil {
			_ = group.Wait()
			return nil, err
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, name := range subdirs {
		node.Directories[name] = children[i]
	}
	return node, nil
}

func relativePath(prefix, path string) string {
	name := filepath.Base(path)
	if name == string(filepath.Separator) || name == "." {
		name = ""
	}
	return strings.TrimPrefix(prefix+webpath.Delimiter+name, webpath.Delimiter)
}
