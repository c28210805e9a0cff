package cli

import (
	"fmt"
	"io"
	"regexp"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/tarcodec/src/tarcodec"
)

type listOptions struct {
	glob    string
	regexp  string
	limit   int
	verbose bool
}

func newList(a *app) *cobra.Command {
	opts := new(listOptions)
	cmd := &cobra.Command{
		Use:   "list [flags] [ARCHIVE]",
		Short: "List the entries of a tar archive, read from stdin when ARCHIVE is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(opts, args)
		},
	}
	addSelectFlags(cmd, &opts.glob, &opts.regexp, &opts.limit)
	cmd.Flags().BoolVarP(&opts.verbose, "long", "l", false, "show type, mode, owner, size and time")
	return cmd
}

func addSelectFlags(cmd *cobra.Command, glob, re *string, limit *int) {
	flags := cmd.Flags()
	flags.StringVarP(glob, "glob", "g", "", "only entries whose name matches this glob")
	flags.StringVarP(re, "regexp", "r", "", "only entries whose name matches this regular expression")
	flags.IntVarP(limit, "limit", "n", 0, "stop after this many matching entries")
}

func selectOptions(glob, re string, limit int) ([]tarcodec.Option, error) {
	opts := []tarcodec.Option{tarcodec.OptLimit(limit)}
	switch {
	case glob != "" && re != "":
		return nil, errors.New("--glob and --regexp are exclusive")
	case glob != "":
		opts = append(opts, tarcodec.OptFilterValue(glob))
	case re != "":
		compiled, err := regexp.Compile(re)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tarcodec.OptFilterValue(compiled))
	}
	return opts, nil
}

// input opens the archive named by args, or stdin.
func (a *app) input(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(a.stdin), nil
	}
	return a.fs.Open(args[0])
}

func (a *app) runList(opts *listOptions, args []string) error {
	readOpts, err := selectOptions(opts.glob, opts.regexp, opts.limit)
	if err != nil {
		return err
	}
	in, err := a.input(args)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	w := tabwriter.NewWriter(a.stdout, 0, 4, 1, ' ', 0)
	err = tarcodec.ReadFunc(in, func(e *tarcodec.Entry) error {
		if !opts.verbose {
			_, err := fmt.Fprintln(w, e.Name)
			return err
		}
		name := e.Name
		if e.Stat.Linkname != "" {
			name += " -> " + e.Stat.Linkname
		}
		_, err := fmt.Fprintf(w, "%s\t%04o\t%d/%d\t%d\t%s\t%s\n",
			e.Stat.Type, e.Stat.Mode, e.Stat.UID, e.Stat.GID, e.Stat.Size,
			e.Stat.ModTime.UTC().Format("2006-01-02 15:04"), name)
		return err
	}, readOpts...)
	if err != nil {
		return err
	}
	return w.Flush()
}
