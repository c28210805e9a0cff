package tarcodec

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
)

// StatProvider derives entry metadata for a filesystem path.
type StatProvider interface {
	Stat(name string) (Stat, error)
}

// FSStat is a StatProvider backed by an afero filesystem. Symbolic links are not followed.
type FSStat struct {
	Fs afero.Fs
	// LookupNames resolves Uname and Gname from the system user and group databases.
	LookupNames bool
}

// NewFSStat returns a StatProvider for fs. A nil fs means the OS filesystem.
func NewFSStat(fs afero.Fs) *FSStat {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FSStat{Fs: fs}
}

func (p *FSStat) lstat(name string) (os.FileInfo, error) {
	if l, ok := p.Fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(name)
		return fi, err
	}
	return p.Fs.Stat(name)
}

func (p *FSStat) Stat(name string) (Stat, error) {
	fi, err := p.lstat(name)
	if err != nil {
		return Stat{}, err
	}
	st := Stat{
		Mode:    modeBits(fi.Mode()),
		ModTime: fi.ModTime(),
	}
	st.UID, st.GID = fileOwner(fi)
	switch mode := fi.Mode(); {
	case mode.IsDir():
		st.Type = TypeDir
	case mode&os.ModeSymlink != 0:
		st.Type = TypeSymlink
		lr, ok := p.Fs.(afero.LinkReader)
		if !ok {
			return Stat{}, ErrUnsupported
		}
		if st.Linkname, err = lr.ReadlinkIfPossible(name); err != nil {
			return Stat{}, err
		}
	case mode.IsRegular():
		st.Type = TypeFile
		st.Size = fi.Size()
	default:
		return Stat{}, ErrUnsupported
	}
	if p.LookupNames {
		st.Uname, st.Gname = ownerNames(st.UID, st.GID)
	}
	if log.Enabled(logrus.TraceLevel) {
		log.WithFields("path", name, "type", st.Type).Trace("stat")
	}
	return st, nil
}

// modeBits converts a FileMode into tar permission and special bits.
func modeBits(m os.FileMode) int64 {
	bits := int64(m.Perm())
	if m&os.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if m&os.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if m&os.ModeSticky != 0 {
		bits |= 0o1000
	}
	return bits
}
