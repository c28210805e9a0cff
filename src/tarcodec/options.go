package tarcodec

import (
	"time"

	"github.com/spf13/afero"
)

// Option configures an Archive, a read or a write. Options that do not apply to an operation are ignored.
type Option interface {
	applyOption(cfg *config)
}

type headerFixFunc func(hdr *header)

type config struct {
	fs   afero.Fs
	stat StatProvider

	filter    Filter
	filterErr error
	limit     int

	headerFixes []headerFixFunc
}

func newConfig(opts []Option) *config {
	cfg := &config{
		filter:      NoFilter,
		headerFixes: make([]headerFixFunc, 0, 4),
	}
	for _, opt := range opts {
		opt.applyOption(cfg)
	}
	return cfg
}

// optionFunc adapts a plain function to Option.
type optionFunc func(cfg *config)

func (f optionFunc) applyOption(cfg *config) { f(cfg) }

// OptFs sets the filesystem paths are resolved against. Defaults to the OS filesystem.
func OptFs(fs afero.Fs) Option {
	return optionFunc(func(cfg *config) { cfg.fs = fs })
}

// OptStatProvider replaces the provider Add derives metadata from.
func OptStatProvider(p StatProvider) Option {
	return optionFunc(func(cfg *config) { cfg.stat = p })
}

// OptFilter restricts reading to entries admitted by f.
func OptFilter(f Filter) Option {
	return optionFunc(func(cfg *config) {
		if f == nil {
			f = NoFilter
		}
		cfg.filter = f
	})
}

// OptFilterValue converts v with NewFilter. An unsupported value makes the read fail before any I/O.
func OptFilterValue(v interface{}) Option {
	return optionFunc(func(cfg *config) {
		cfg.filter, cfg.filterErr = NewFilter(v)
	})
}

// OptLimit stops reading after n admitted entries. Zero means no limit.
func OptLimit(n int) Option {
	return optionFunc(func(cfg *config) { cfg.limit = n })
}

type setUIDOption struct {
	uid int
}

func (opt setUIDOption) applyOption(cfg *config) {
	cfg.headerFixes = append(cfg.headerFixes,
		func(hdr *header) {
			hdr.uid = int64(opt.uid)
			hdr.uname = ""
		})
}

// OptUID writes every entry with user ID uid.
func OptUID(uid int) Option {
	return setUIDOption{uid: uid}
}

type setGIDOption struct {
	gid int
}

func (opt setGIDOption) applyOption(cfg *config) {
	cfg.headerFixes = append(cfg.headerFixes,
		func(hdr *header) {
			hdr.gid = int64(opt.gid)
			hdr.gname = ""
		})
}

// OptGID writes every entry with group ID gid.
func OptGID(gid int) Option {
	return setGIDOption{gid: gid}
}

// OptNumericIDs drops owner and group names from written headers.
var OptNumericIDs Option = optNumericIDs{}

type optNumericIDs struct{}

func (opt optNumericIDs) applyOption(cfg *config) {
	cfg.headerFixes = append(cfg.headerFixes,
		func(hdr *header) {
			hdr.uname = ""
			hdr.gname = ""
		})
}

// OptModTime writes every entry with modification time t.
func OptModTime(t time.Time) Option {
	return optionFunc(func(cfg *config) {
		cfg.headerFixes = append(cfg.headerFixes, func(hdr *header) {
			hdr.mtime = t.Unix()
		})
	})
}

type rebaseOption struct {
	mod PathMod
}

func (opt rebaseOption) applyOption(cfg *config) {
	cfg.headerFixes = append(cfg.headerFixes,
		func(hdr *header) {
			hdr.name = opt.mod.FixPath(hdr.name)
		})
}

// OptRebase rewrites written names below baseDir to live below dir instead.
func OptRebase(baseDir, dir string) Option {
	return rebaseOption{mod: PathMod{BaseDir: baseDir, ModDir: dir}}
}

// OptRelative rewrites written names below baseDir to "./"-relative paths.
func OptRelative(baseDir string) Option {
	return OptRebase(baseDir, "./")
}
