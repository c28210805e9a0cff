// Package tarcodec reads tar streams into an in-memory Archive and writes Archives back into byte-exact
// tar streams. It understands regular files, directories, symbolic and hard links, and GNU long names.
//
// An Archive is not safe for concurrent use.
package tarcodec

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
)

// Archive is an ordered collection of entries. Duplicate names are kept.
type Archive struct {
	entries []*Entry
	fs      afero.Fs
	stat    StatProvider
}

// New creates an empty archive. OptFs and OptStatProvider apply.
func New(opts ...Option) *Archive {
	cfg := newConfig(opts)
	return newArchive(cfg)
}

func newArchive(cfg *config) *Archive {
	a := &Archive{fs: cfg.fs, stat: cfg.stat}
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.stat == nil {
		a.stat = NewFSStat(a.fs)
	}
	return a
}

// Fs returns the filesystem paths are resolved against.
func (a *Archive) Fs() afero.Fs {
	return a.fs
}

// Add appends the filesystem object at name. Metadata is taken from the StatProvider and then
// overridden. A path that does not exist becomes a directory when name ends in "/", otherwise a
// file whose payload fails with ErrMissingSource when written.
func (a *Archive) Add(name string, overrides ...StatOption) error {
	st, err := a.stat.Stat(name)
	switch {
	case err == nil:
	case os.IsNotExist(errors.Cause(err)):
		log.WithFields("name", name).Debug("path does not exist, using defaults")
		st = defaultStat(name)
	default:
		return errors.Wrapf(err, "unable to stat %q", name)
	}
	st.apply(overrides)
	e := &Entry{Name: name, Stat: st}
	if st.Type == TypeFile {
		e.Payload = PayloadPath(name)
	}
	a.Append(e)
	return nil
}

// AddSource appends a file whose payload is read from r when the archive is written.
// The type defaults to a directory when name ends in "/" and to a file otherwise.
func (a *Archive) AddSource(name string, r io.Reader, overrides ...StatOption) error {
	if r == nil {
		return errors.Wrapf(ErrMissingSource, "entry %q", name)
	}
	st := defaultStat(name)
	st.Size = -1
	st.apply(overrides)
	e := &Entry{Name: name, Stat: st}
	if st.Type == TypeFile {
		p := &readerPayload{r: r, size: st.Size}
		if p.size < 0 {
			p.size = knownSize(r)
		}
		e.Stat.Size = p.size
		if e.Stat.Size < 0 {
			e.Stat.Size = 0
		}
		e.Payload = p
	}
	a.Append(e)
	return nil
}

// AddBytes appends a file with in-memory content.
func (a *Archive) AddBytes(name string, data []byte, overrides ...StatOption) {
	st := defaultStat(name)
	st.Type = TypeFile
	st.Mode = 0o644
	st.Size = int64(len(data))
	st.apply(overrides)
	e := &Entry{Name: name, Stat: st}
	if st.Type == TypeFile {
		e.Payload = PayloadBytes(data)
	}
	a.Append(e)
}

// Append adds e as is.
func (a *Archive) Append(e *Entry) {
	if e.fs == nil {
		e.fs = a.fs
	}
	if log.Enabled(logrus.TraceLevel) {
		log.WithFields("name", e.Name, "type", e.Stat.Type, "size", e.Stat.Size).Trace("entry added")
	}
	a.entries = append(a.entries, e)
}

// Get returns the first entry called name, in insertion order.
func (a *Archive) Get(name string) (*Entry, bool) {
	for _, e := range a.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Count returns the number of entries.
func (a *Archive) Count() int {
	return len(a.entries)
}

// Names lists entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns the entries in archive order. The slice is shared with the archive.
func (a *Archive) Entries() []*Entry {
	return a.entries
}

// TarSize is the length of the stream Write produces with the same opts, footer included.
func (a *Archive) TarSize(opts ...Option) (int64, error) {
	fixes := newConfig(opts).headerFixes
	total := footerSize
	for _, e := range a.entries {
		n, err := e.tarSize(fixes)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
