// Package walk lists the content of a directory and its subdirectories, including only directories, links and files.
// It produces a stream of paths and file sizes in lexical order.
package walk

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
)

// Entry describes a listed filesystem object.
type Entry struct {
	Name string            // Path of the object. Directories end in "/".
	Type tarcodec.FileType // Directory, symlink or regular file.
	Size int64             // Size of regular files.
}

// DirError reports a directory whose content could not be listed. The directory itself is still
// listed; listing continues with its siblings.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string { return "unable to list " + e.Dir + ": " + e.Err.Error() }

func (e *DirError) Unwrap() error { return e.Err }

func (e *DirError) Cause() error { return e.Err }

// Option configures a listing.
type Option interface {
	applyOption(cfg *config)
}

type config struct {
	exclude []string
	stat    []tarcodec.StatOption
}

type excludeOption []string

func (opt excludeOption) applyOption(cfg *config) {
	cfg.exclude = append(cfg.exclude, opt...)
}

// OptExclude skips paths matching any of the doublestar patterns, evaluated relative to the listed
// directory. Excluded directories are not descended into.
func OptExclude(patterns ...string) Option {
	return excludeOption(patterns)
}

type statOption []tarcodec.StatOption

func (opt statOption) applyOption(cfg *config) {
	cfg.stat = append(cfg.stat, opt...)
}

// OptStat applies overrides to every entry AddTree adds.
func OptStat(overrides ...tarcodec.StatOption) Option {
	return statOption(overrides)
}

type lister struct {
	fs   afero.Fs
	root string
	cfg  *config

	c    chan interface{}
	done chan struct{}
	once sync.Once
}

func newLister(fs afero.Fs, dir string, opts []Option) *lister {
	cfg := new(config)
	for _, opt := range opts {
		opt.applyOption(cfg)
	}
	return &lister{
		fs:   fs,
		root: path.Clean(dir),
		cfg:  cfg,
		c:    make(chan interface{}, 10),
		done: make(chan struct{}),
	}
}

func (list *lister) exit() {
	list.once.Do(func() { close(list.done) })
}

// send delivers v unless the consumer has gone away.
func (list *lister) send(v interface{}) bool {
	select {
	case list.c <- v:
		return true
	case <-list.done:
		return false
	}
}

func (list *lister) excluded(name string) bool {
	rel := strings.TrimPrefix(strings.TrimPrefix(name, list.root), "/")
	for _, pattern := range list.cfg.exclude {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			log.WithFields("pattern", pattern, "error", err).Debug("bad exclude pattern")
		}
		if ok {
			return true
		}
	}
	return false
}

func (list *lister) run() {
	defer close(list.c)
	fi, err := list.fs.Stat(list.root)
	if err != nil {
		list.send(err)
		return
	}
	if !fi.IsDir() {
		list.send(errors.Wrapf(ErrNoDir, "%s", list.root))
		return
	}
	list.addDir(list.root)
}

func (list *lister) addDir(dir string) bool {
	if !list.send(&Entry{Name: dirName(dir), Type: tarcodec.TypeDir}) {
		return false
	}
	entries, err := afero.ReadDir(list.fs, dir)
	if err != nil {
		log.WithFields("dir", dir, "error", err).Warn("failed to list directory")
		return list.send(&DirError{Dir: dir, Err: err})
	}
	for _, e := range entries {
		name := path.Join(dir, e.Name())
		if list.excluded(name) {
			if log.Enabled(logrus.TraceLevel) {
				log.WithFields("path", name).Trace("excluded")
			}
			continue
		}
		mode := e.Mode()
		switch {
		case mode.IsDir():
			if !list.addDir(name) {
				return false
			}
		case mode&os.ModeSymlink != 0:
			if !list.send(&Entry{Name: name, Type: tarcodec.TypeSymlink}) {
				return false
			}
		case mode.IsRegular():
			if !list.send(&Entry{Name: name, Type: tarcodec.TypeFile, Size: e.Size()}) {
				return false
			}
		}
	}
	return true
}

func dirName(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// ListToChan produces a flow of list entries sent to entries.
// The channel is closed after listing has been completed and must be drained.
// The channel will contain either *Entry or error values. A *DirError is followed by more values;
// any other error is the last value.
func ListToChan(fs afero.Fs, dir string, opts ...Option) (entries chan interface{}) {
	list := newLister(fs, dir, opts)
	go list.run()
	return list.c
}

// ListToFunc produces a flow of list entries that are given to entryFunc for processing.
// Listing stops at the first error returned by entryFunc or at a root that cannot be listed.
// Subdirectories that cannot be listed are skipped and returned together as a *multierror.Error
// of *DirError once listing is done.
func ListToFunc(fs afero.Fs, dir string, entryFunc func(*Entry) error, opts ...Option) error {
	list := newLister(fs, dir, opts)
	go list.run()
	defer list.exit()
	var skipped error
	for m := range list.c {
		switch n := m.(type) {
		case *Entry:
			if err := entryFunc(n); err != nil {
				return err
			}
		case *DirError:
			skipped = multierror.Append(skipped, n)
		case error:
			return n
		}
	}
	return skipped
}
