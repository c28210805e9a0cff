package tarcodec

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Payload is the content source of a file entry. It is resolved once, when the entry is written.
type Payload interface {
	// open returns the content and its length, or -1 when the length is unknown.
	open(fs afero.Fs) (io.ReadCloser, int64, error)
}

// PayloadBytes binds in-memory content.
func PayloadBytes(b []byte) Payload {
	return memoryPayload(b)
}

// PayloadReader binds an external byte source. The reader is borrowed and
// consumed by the first write; it is never closed by the archive.
func PayloadReader(r io.Reader) Payload {
	return &readerPayload{r: r, size: knownSize(r)}
}

// PayloadPath binds a filesystem path that is opened at write time. Exactly Stat.Size bytes of
// it are written; a shorter file fails with ErrTruncated.
func PayloadPath(path string) Payload {
	return pathPayload(path)
}

type memoryPayload []byte

func (p memoryPayload) open(afero.Fs) (io.ReadCloser, int64, error) {
	return ioutil.NopCloser(bytes.NewReader(p)), int64(len(p)), nil
}

type readerPayload struct {
	r    io.Reader
	size int64
}

func (p *readerPayload) open(afero.Fs) (io.ReadCloser, int64, error) {
	if p.r == nil {
		return nil, 0, ErrMissingSource
	}
	return ioutil.NopCloser(p.r), p.size, nil
}

type pathPayload string

func (p pathPayload) open(fs afero.Fs) (io.ReadCloser, int64, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(string(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errors.Wrapf(ErrMissingSource, "%s", string(p))
		}
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

// knownSize inspects r for a length that can be had without reading it. Returns -1 otherwise.
func knownSize(r io.Reader) int64 {
	switch v := r.(type) {
	case *bytes.Reader:
		return int64(v.Len())
	case *strings.Reader:
		return int64(v.Len())
	case *bytes.Buffer:
		return int64(v.Len())
	case interface{ Stat() (os.FileInfo, error) }:
		fi, err := v.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return -1
		}
		if s, ok := r.(io.Seeker); ok {
			if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
				return fi.Size() - pos
			}
		}
		return fi.Size()
	}
	return -1
}

// spool copies r to a temporary file so its size is known before the header is written.
// The returned closer removes the file.
func spool(fs afero.Fs, r io.Reader) (io.ReadCloser, int64, error) {
	tmp, err := afero.TempFile(fs, "", "tarcodec-*")
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to create temp file")
	}
	size, err := io.Copy(tmp, r)
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return nil, 0, errors.Wrap(err, "unable to spool payload")
	}
	return &autoDeleteFile{File: tmp, fs: fs}, size, nil
}

// autoDeleteFile removes the underlying file when closed.
type autoDeleteFile struct {
	afero.File
	fs afero.Fs
}

func (f *autoDeleteFile) Close() error {
	name := f.Name()
	err := f.File.Close()
	if removeErr := f.fs.Remove(name); removeErr != nil && err == nil {
		err = removeErr
	}
	return err
}
