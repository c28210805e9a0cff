package tarcodec

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/tarcodec/src/log"
)

// Read decodes the tar stream r into a new Archive. OptFilter, OptFilterValue and OptLimit select
// which entries are kept; OptFs sets the filesystem of the returned archive.
func Read(r io.Reader, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)
	a := newArchive(cfg)
	err := readStream(r, cfg, func(e *Entry) error {
		a.Append(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReadFunc decodes r and calls fn for every admitted entry in archive order. An error returned by
// fn stops reading and is returned.
func ReadFunc(r io.Reader, fn func(*Entry) error, opts ...Option) error {
	return readStream(r, newConfig(opts), fn)
}

func readStream(r io.Reader, cfg *config, fn func(*Entry) error) error {
	if cfg.filterErr != nil {
		return cfg.filterErr
	}
	if cfg.limit < 0 {
		return errors.Wrapf(ErrInvalidLimit, "%d", cfg.limit)
	}
	br := &blockReader{r: r}
	admitted := 0
	for {
		e, err := br.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !cfg.filter.Match(e.Name) {
			if log.Enabled(logrus.TraceLevel) {
				log.WithFields("name", e.Name, "filter", cfg.filter).Trace("entry rejected")
			}
			if err := br.skipPayload(e); err != nil {
				return err
			}
			continue
		}
		if err := br.readPayload(e); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		admitted++
		if cfg.limit > 0 && admitted >= cfg.limit {
			log.WithFields("limit", cfg.limit, "offset", br.offset).Debug("read limit reached")
			return nil
		}
	}
}

// blockReader consumes a tar stream one block at a time. It never seeks.
type blockReader struct {
	r      io.Reader
	offset int64

	pendingSize int64 // payload bytes announced by the last header.
}

// readBlock returns io.EOF only when the stream ends exactly on a block boundary.
func (br *blockReader) readBlock(b *block) error {
	n, err := io.ReadFull(br.r, b[:])
	br.offset += int64(n)
	switch err {
	case nil:
		return nil
	case io.EOF:
		return io.EOF
	case io.ErrUnexpectedEOF:
		return errors.Wrapf(ErrTruncated, "partial block at offset %d", br.offset-int64(n))
	default:
		return err
	}
}

// readData reads size payload bytes plus block padding. The buffer grows with the data that
// actually arrives, so a header announcing more than the stream holds fails with ErrTruncated.
func (br *blockReader) readData(size int64) ([]byte, error) {
	want := paddedSize(size)
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, br.r, want)
	br.offset += n
	if err == io.EOF {
		return nil, errors.Wrapf(ErrTruncated, "want %d bytes at offset %d, got %d", want, br.offset-n, n)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes()[:size], nil
}

// next decodes the next physical entry header, resolving GNU long name records. The payload is
// left in the stream for readPayload or skipPayload. It returns io.EOF at the end of the archive.
func (br *blockReader) next() (*Entry, error) {
	var longName, longLink *string
	start := br.offset
	for {
		var b block
		if err := br.readBlock(&b); err != nil {
			if err == io.EOF && (longName != nil || longLink != nil) {
				return nil, errors.Wrap(ErrTruncated, "long name without entry")
			}
			if err == io.EOF {
				log.WithFields("offset", br.offset).Debug("archive ended without end marker")
			}
			return nil, err
		}
		if b.isZero() {
			if err := br.endOfArchive(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		hdr, err := decodeHeader(&b)
		if err != nil {
			return nil, errors.Wrapf(err, "header at offset %d", br.offset-blockSize)
		}
		switch hdr.typeflag {
		case typeLongName, typeLongLink:
			if hdr.size > maxLongNameSize {
				return nil, errors.Wrapf(ErrInvalidHeader, "long name record of %d bytes at offset %d", hdr.size, br.offset-blockSize)
			}
			data, err := br.readData(hdr.size)
			if err != nil {
				return nil, err
			}
			s := parseString(data)
			if hdr.typeflag == typeLongName {
				longName = &s
			} else {
				longLink = &s
			}
			continue
		case typeReg, typeRegA, typeCont, typeDir, typeSymlink, typeLink:
		default:
			log.WithFields("name", hdr.name, "typeflag", string(hdr.typeflag)).Debug("skipping unsupported entry type")
			br.pendingSize = hdr.size
			if err := br.skipPayload(&Entry{Name: hdr.name}); err != nil {
				return nil, err
			}
			longName, longLink = nil, nil
			start = br.offset
			continue
		}
		if longName != nil {
			hdr.name = *longName
		}
		if longLink != nil {
			hdr.linkname = *longLink
		}
		br.pendingSize = 0
		if hdr.hasPayload() {
			br.pendingSize = hdr.size
		}
		return &Entry{
			Name:      hdr.name,
			Stat:      hdr.stat(),
			FirstByte: start,
			LastByte:  br.offset + paddedSize(br.pendingSize),
		}, nil
	}
}

// endOfArchive is called after a zero block. A second zero block, or the end of the stream, ends
// the archive; anything else is a corrupt stream.
func (br *blockReader) endOfArchive() error {
	var b block
	err := br.readBlock(&b)
	if err == io.EOF {
		log.WithFields("offset", br.offset).Debug("archive ended after a single zero block")
		return nil
	}
	if err != nil {
		return err
	}
	if !b.isZero() {
		return errors.Wrapf(ErrInvalidHeader, "lone zero block at offset %d", br.offset-2*blockSize)
	}
	return nil
}

func (br *blockReader) readPayload(e *Entry) error {
	if e.Stat.Type != TypeFile {
		return nil
	}
	data, err := br.readData(br.pendingSize)
	if err != nil {
		return errors.Wrapf(err, "entry %q", e.Name)
	}
	br.pendingSize = 0
	e.Payload = PayloadBytes(data)
	return nil
}

func (br *blockReader) skipPayload(e *Entry) error {
	want := paddedSize(br.pendingSize)
	br.pendingSize = 0
	n, err := io.CopyN(ioutil.Discard, br.r, want)
	br.offset += n
	if err == io.EOF {
		return errors.Wrapf(ErrTruncated, "entry %q: want %d bytes, got %d", e.Name, want, n)
	}
	return err
}
