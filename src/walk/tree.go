package walk

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
)

// ErrNoDir is returned if a given path is not a directory.
var ErrNoDir = errors.New("no directory")

// AddTree adds dir and everything below it to a, in listing order, resolving paths against the
// archive's filesystem. Paths that cannot be added and subdirectories that cannot be listed are
// skipped and reported together once the listing is done. A root that cannot be statted fails
// immediately.
func AddTree(a *tarcodec.Archive, dir string, opts ...Option) error {
	cfg := new(config)
	for _, opt := range opts {
		opt.applyOption(cfg)
	}
	var errs error
	added := 0
	err := ListToFunc(a.Fs(), dir, func(e *Entry) error {
		if err := a.Add(e.Name, cfg.stat...); err != nil {
			log.WithFields("path", e.Name, "error", err).Warn("failed to add path")
			errs = multierror.Append(errs, err)
			return nil
		}
		added++
		return nil
	}, opts...)
	if err != nil {
		var skipped *multierror.Error
		if !errors.As(err, &skipped) {
			return err
		}
		errs = multierror.Append(errs, skipped.Errors...)
	}
	log.WithFields("dir", dir, "entries", added).Debug("tree added")
	return errs
}
