package tarcodec

import (
	"bytes"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileType classifies an archived filesystem object.
type FileType byte

const (
	TypeFile FileType = iota
	TypeDir
	TypeSymlink
	TypeHardlink
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "directory"
	case TypeSymlink:
		return "link"
	case TypeHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// Stat is the metadata stored in an entry's header.
type Stat struct {
	Mode     int64     // Permission and special bits, e.g. 0o755.
	UID      int       // Owner user ID.
	GID      int       // Owner group ID.
	Uname    string    // Owner user name. Empty unless set or looked up.
	Gname    string    // Owner group name. Empty unless set or looked up.
	ModTime  time.Time // Modification time, second precision.
	Size     int64     // Payload length. Always 0 for directories and links.
	Type     FileType  // File, directory, symlink or hard link.
	Linkname string    // Link target. Only set for links.
}

// StatOption overrides a single Stat field.
type StatOption func(*Stat)

func WithMode(mode int64) StatOption { return func(s *Stat) { s.Mode = mode } }

func WithUID(uid int) StatOption { return func(s *Stat) { s.UID = uid } }

func WithGID(gid int) StatOption { return func(s *Stat) { s.GID = gid } }

func WithUname(name string) StatOption { return func(s *Stat) { s.Uname = name } }

func WithGname(name string) StatOption { return func(s *Stat) { s.Gname = name } }

// WithModTime sets the modification time. Sub-second precision is dropped.
func WithModTime(t time.Time) StatOption {
	return func(s *Stat) { s.ModTime = time.Unix(t.Unix(), 0) }
}

// WithSize declares the payload length. Only meaningful for files.
func WithSize(size int64) StatOption { return func(s *Stat) { s.Size = size } }

func WithType(t FileType) StatOption { return func(s *Stat) { s.Type = t } }

func WithLinkname(target string) StatOption { return func(s *Stat) { s.Linkname = target } }

func (s *Stat) apply(overrides []StatOption) {
	for _, o := range overrides {
		o(s)
	}
	if s.Type != TypeFile {
		s.Size = 0
	}
}

// defaultStat is used when nothing can be derived from the filesystem.
func defaultStat(name string) Stat {
	st := Stat{
		Mode:    0o644,
		ModTime: time.Unix(0, 0),
		Type:    TypeFile,
	}
	if isDirName(name) {
		st.Mode = 0o755
		st.Type = TypeDir
	}
	return st
}

func isDirName(name string) bool {
	return strings.HasSuffix(name, "/")
}

// Entry is one archived item.
type Entry struct {
	Name    string
	Stat    Stat
	Payload Payload // Nil for directories and links.

	FirstByte int64 // First byte occupied in the tar stream. Only populated when reading.
	LastByte  int64 // Byte following the entry in the tar stream. Only populated when reading.

	fs afero.Fs
}

// Bytes returns the entry's payload. Reading an external source consumes it.
func (e *Entry) Bytes() ([]byte, error) {
	if e.Payload == nil {
		return nil, nil
	}
	if b, ok := e.Payload.(memoryPayload); ok {
		return b, nil
	}
	rc, _, err := e.Payload.open(e.fs)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return ioutil.ReadAll(rc)
}

// Open returns a reader for the entry's payload.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.Payload == nil {
		return ioutil.NopCloser(bytes.NewReader(nil)), nil
	}
	rc, _, err := e.Payload.open(e.fs)
	return rc, err
}

// TarSize is the number of bytes the entry occupies when written with opts, including
// long name records. It returns ErrUnknownSize for external sources of undeclared length.
func (e *Entry) TarSize(opts ...Option) (int64, error) {
	return e.tarSize(newConfig(opts).headerFixes)
}

func (e *Entry) tarSize(fixes []headerFixFunc) (int64, error) {
	name, link := e.Name, e.Stat.Linkname
	if len(fixes) > 0 {
		hdr, err := headerFromStat(e.Name, &e.Stat)
		if err != nil {
			return 0, err
		}
		for _, fix := range fixes {
			fix(hdr)
		}
		name, link = hdr.name, hdr.linkname
	}
	size := blockSize
	if len(name) > nameSize {
		size += blockSize + paddedSize(int64(len(name))+1)
	}
	if (e.Stat.Type == TypeSymlink || e.Stat.Type == TypeHardlink) && len(link) > nameSize {
		size += blockSize + paddedSize(int64(len(link))+1)
	}
	if e.Stat.Type != TypeFile {
		return size, nil
	}
	switch p := e.Payload.(type) {
	case memoryPayload:
		return size + paddedSize(int64(len(p))), nil
	case *readerPayload:
		if p.size < 0 {
			return 0, errors.Wrapf(ErrUnknownSize, "entry %q", e.Name)
		}
		return size + paddedSize(p.size), nil
	}
	return size + paddedSize(e.Stat.Size), nil
}
