package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/sums"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
	"github.com/aurora-is-near/tarcodec/src/util"
	"github.com/aurora-is-near/tarcodec/src/walk"
)

type createOptions struct {
	output      string
	mtime       int64
	printDigest bool
}

func newCreate(a *app) *cobra.Command {
	opts := new(createOptions)
	cmd := &cobra.Command{
		Use:   "create [flags] PATH...",
		Short: "Write the given files and directory trees to a tar archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "-", "archive to create, - for stdout")
	flags.Int64Var(&opts.mtime, "mtime", -1, "write every entry with this unix modification time")
	flags.BoolVar(&opts.printDigest, "digest", false, "print the sha256 digest of the archive to stderr")
	flags.StringSlice("exclude", nil, "doublestar patterns of paths to leave out of directory trees")
	flags.Bool("numeric-ids", false, "drop owner and group names")
	flags.Int("uid", -1, "write every entry with this user id")
	flags.Int("gid", -1, "write every entry with this group id")
	flags.String("relative-to", "", "rewrite names below this directory to ./ relative names")
	flags.Bool("lookup-names", false, "record owner and group names from the system databases")
	a.bind(flags.Lookup("exclude"), "exclude")
	a.bind(flags.Lookup("numeric-ids"), "write.numeric-ids")
	a.bind(flags.Lookup("uid"), "write.uid")
	a.bind(flags.Lookup("gid"), "write.gid")
	a.bind(flags.Lookup("relative-to"), "write.relative-to")
	a.bind(flags.Lookup("lookup-names"), "write.lookup-names")
	return cmd
}

// writeOptions turns the configured header fixes into write options.
func (a *app) writeOptions(mtime int64) []tarcodec.Option {
	w := a.cfg.Write
	var opts []tarcodec.Option
	if w.Relative != "" {
		opts = append(opts, tarcodec.OptRelative(w.Relative))
	}
	if w.NumericIDs {
		opts = append(opts, tarcodec.OptNumericIDs)
	}
	if w.UID >= 0 {
		opts = append(opts, tarcodec.OptUID(w.UID))
	}
	if w.GID >= 0 {
		opts = append(opts, tarcodec.OptGID(w.GID))
	}
	if mtime >= 0 {
		opts = append(opts, tarcodec.OptModTime(time.Unix(mtime, 0)))
	}
	return opts
}

func (a *app) buildArchive(paths []string) (*tarcodec.Archive, error) {
	stat := tarcodec.NewFSStat(a.fs)
	stat.LookupNames = a.cfg.Write.LookupName
	archive := tarcodec.New(tarcodec.OptFs(a.fs), tarcodec.OptStatProvider(stat))
	for _, p := range paths {
		fi, err := a.fs.Stat(p)
		if err == nil && fi.IsDir() {
			if err := walk.AddTree(archive, p, walk.OptExclude(a.cfg.Exclusions...)); err != nil {
				return nil, err
			}
			continue
		}
		if err := archive.Add(p); err != nil {
			return nil, err
		}
	}
	return archive, nil
}

func (a *app) runCreate(opts *createOptions, paths []string) error {
	archive, err := a.buildArchive(paths)
	if err != nil {
		return err
	}
	writeOpts := a.writeOptions(opts.mtime)

	var out io.Writer = a.stdout
	if opts.output != "-" {
		f, err := util.CreateFile(a.fs, opts.output)
		if err != nil {
			return errors.Wrapf(err, "unable to create %s", opts.output)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	n, err := archive.Write(out, writeOpts...)
	if err != nil {
		return err
	}
	log.Infof("wrote %d entries, %d bytes", archive.Count(), n)

	if opts.printDigest {
		d, err := sums.ArchiveDigest(archive, digest.SHA256, writeOpts...)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(a.stderr, d)
	}
	return nil
}
