// Package splitting cuts tar archives at entry boundaries.
package splitting

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
	"github.com/aurora-is-near/tarcodec/src/util"
)

// PartSuffix is appended to the archive name to form the name of the second part.
const PartSuffix = ".part2"

// ErrNoMidpoint is returned if no entry starts in the second half of the archive.
var ErrNoMidpoint = errors.New("no entry boundary after the middle of the archive")

var errFound = errors.New("found")

// Midpoint reads the tar stream r of size bytes and returns the byte following the first entry
// that starts at or after size/2.
func Midpoint(r io.Reader, size int64) (int64, error) {
	stop := size / 2
	var mid int64
	err := tarcodec.ReadFunc(r, func(e *tarcodec.Entry) error {
		if e.FirstByte < stop {
			return nil
		}
		mid = e.LastByte
		return errFound
	})
	switch {
	case err == errFound:
		return mid, nil
	case err != nil:
		return 0, err
	}
	return 0, ErrNoMidpoint
}

// SplitTarMiddle splits a tar file roughly at its middle so that each part is a readable tar
// stream. The file is truncated in place and the remainder is copied to name+PartSuffix, which
// must not exist.
func SplitTarMiddle(fs afero.Fs, name string) error {
	f, err := fs.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	mid, err := Midpoint(f, fi.Size())
	if err != nil {
		return errors.Wrapf(err, "%s", name)
	}

	dest, err := util.CreateFile(fs, name+PartSuffix)
	if err != nil {
		return err
	}
	defer func() { _ = dest.Close() }()
	if _, err := f.Seek(mid, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(dest, f)
	if err != nil {
		return err
	}
	log.WithFields("name", name, "midpoint", mid, "part2", n).Debug("archive split")
	return f.Truncate(mid)
}
