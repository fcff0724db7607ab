package tree

import (
	"github.com/djherbis/times"
)

// Stat reads timestamps and size for path, following symlinks. Created is
// the birth time when the platform records one, then the inode change time,
// then the modification time.
func Stat(path string) (FileMeta, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return FileMeta{}, err
	}
	info, err := statFn(path)
	if err != nil {
		return FileMeta{}, err
	}

	meta := FileMeta{
		Modified: ts.ModTime(),
		Created:  ts.ModTime(),
		Size:     info.Size(),
	}
	switch {
	case ts.HasBirthTime():
		meta.Created = ts.BirthTime()
	case ts.HasChangeTime():
		meta.Created = ts.ChangeTime()
	}
	return meta, nil
}
