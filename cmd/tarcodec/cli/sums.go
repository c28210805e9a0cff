package cli

import (
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/tarcodec/src/sums"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
)

type sumsOptions struct {
	glob      string
	regexp    string
	limit     int
	algorithm string
}

func newSums(a *app) *cobra.Command {
	opts := new(sumsOptions)
	cmd := &cobra.Command{
		Use:   "sums [flags] [ARCHIVE]",
		Short: "Print a checksum line for every regular file in a tar archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSums(opts, args)
		},
	}
	addSelectFlags(cmd, &opts.glob, &opts.regexp, &opts.limit)
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", string(digest.SHA256), "sha256, sha384 or sha512")
	return cmd
}

func (a *app) runSums(opts *sumsOptions, args []string) error {
	readOpts, err := selectOptions(opts.glob, opts.regexp, opts.limit)
	if err != nil {
		return err
	}
	in, err := a.input(args)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	alg := digest.Algorithm(opts.algorithm)
	if alg == digest.SHA256 {
		return sums.ReadSHA256(in, a.stdout, readOpts...)
	}
	archive, err := tarcodec.Read(in, readOpts...)
	if err != nil {
		return err
	}
	digests, err := sums.EntryDigests(archive, alg)
	if err != nil {
		return err
	}
	return sums.WriteSums(a.stdout, digests)
}
