package tarcodec

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
)

// tarWriter serializes entries as header, payload and padding.
type tarWriter struct {
	w       io.Writer
	fs      afero.Fs
	fixes   []headerFixFunc
	written int64
}

// Write serializes the archive to w in insertion order and terminates it with the end-of-archive
// marker. OptUID, OptGID, OptNumericIDs, OptModTime, OptRebase and OptRelative apply.
func (a *Archive) Write(w io.Writer, opts ...Option) (int64, error) {
	cfg := newConfig(opts)
	tw := &tarWriter{w: w, fs: a.fs, fixes: cfg.headerFixes}
	for _, e := range a.entries {
		if err := tw.writeEntry(e); err != nil {
			return tw.written, err
		}
	}
	err := tw.close()
	log.WithFields("entries", len(a.entries), "bytes", tw.written).Debug("archive written")
	return tw.written, err
}

// WriteTo implements io.WriterTo.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	return a.Write(w)
}

// WriteFunc serializes the archive into memory and hands the complete byte sequence to fn once.
func (a *Archive) WriteFunc(fn func(raw []byte) error, opts ...Option) error {
	buf := new(bytes.Buffer)
	if _, err := a.Write(buf, opts...); err != nil {
		return err
	}
	return fn(buf.Bytes())
}

func (tw *tarWriter) write(p []byte) error {
	n, err := tw.w.Write(p)
	tw.written += int64(n)
	return err
}

func (tw *tarWriter) writeEntry(e *Entry) error {
	switch e.Stat.Type {
	case TypeDir:
		return tw.writeDirectoryEntry(e)
	case TypeSymlink, TypeHardlink:
		return tw.writeLinkEntry(e)
	case TypeFile:
		return tw.writeFileEntry(e)
	default:
		return errors.Wrapf(ErrUnsupported, "entry %q", e.Name)
	}
}

func (tw *tarWriter) newHeader(e *Entry) (*header, error) {
	hdr, err := headerFromStat(e.Name, &e.Stat)
	if err != nil {
		return nil, err
	}
	for _, fix := range tw.fixes {
		fix(hdr)
	}
	return hdr, nil
}

// writeHeader emits GNU long name records when needed, then the header itself.
func (tw *tarWriter) writeHeader(hdr *header) error {
	if len(hdr.linkname) > nameSize {
		if err := tw.writeLongName(typeLongLink, hdr.linkname); err != nil {
			return err
		}
		hdr.linkname = hdr.linkname[:nameSize]
	}
	if len(hdr.name) > nameSize {
		if err := tw.writeLongName(typeLongName, hdr.name); err != nil {
			return err
		}
		hdr.name = hdr.name[:nameSize]
	}
	b, err := encodeHeader(hdr)
	if err != nil {
		return err
	}
	return tw.write(b[:])
}

// writeLongName writes a header-only record whose NUL terminated payload is value.
func (tw *tarWriter) writeLongName(typeflag byte, value string) error {
	hdr := &header{
		name:     longLinkName,
		mode:     0o644,
		size:     int64(len(value)) + 1,
		typeflag: typeflag,
		uname:    "root",
		gname:    "root",
	}
	b, err := encodeHeader(hdr)
	if err != nil {
		return err
	}
	if err := tw.write(b[:]); err != nil {
		return err
	}
	data := make([]byte, paddedSize(hdr.size))
	copy(data, value)
	return tw.write(data)
}

func (tw *tarWriter) writeDirectoryEntry(e *Entry) error {
	hdr, err := tw.newHeader(e)
	if err != nil {
		return err
	}
	return tw.writeHeader(hdr)
}

func (tw *tarWriter) writeLinkEntry(e *Entry) error {
	hdr, err := tw.newHeader(e)
	if err != nil {
		return err
	}
	return tw.writeHeader(hdr)
}

func (tw *tarWriter) writeFileEntry(e *Entry) error {
	if e.Payload == nil {
		return errors.Wrapf(ErrMissingSource, "entry %q", e.Name)
	}
	rc, size, err := e.Payload.open(tw.fs)
	if err != nil {
		return errors.Wrapf(err, "entry %q", e.Name)
	}
	if _, ok := e.Payload.(pathPayload); ok {
		size = e.Stat.Size
	}
	if size < 0 {
		log.WithFields("name", e.Name).Trace("spooling payload of unknown size")
		var spooled io.ReadCloser
		spooled, size, err = spool(tw.fs, rc)
		_ = rc.Close()
		if err != nil {
			return errors.Wrapf(err, "entry %q", e.Name)
		}
		rc = spooled
	}
	defer func() { _ = rc.Close() }()

	hdr, err := tw.newHeader(e)
	if err != nil {
		return err
	}
	hdr.size = size
	if err := tw.writeHeader(hdr); err != nil {
		return err
	}
	n, err := io.CopyN(tw.w, rc, size)
	tw.written += n
	if err == io.EOF {
		return errors.Wrapf(ErrTruncated, "entry %q: payload has %d of %d bytes", e.Name, n, size)
	}
	if err != nil {
		return err
	}
	if pad := paddingSize(size); pad > 0 {
		return tw.write(zeroBlock[:pad])
	}
	return nil
}

// close writes the two zero blocks that end the archive.
func (tw *tarWriter) close() error {
	for i := 0; i < 2; i++ {
		if err := tw.write(zeroBlock[:]); err != nil {
			return err
		}
	}
	return nil
}
