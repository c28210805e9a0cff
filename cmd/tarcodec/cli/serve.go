package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/tarserv"
)

func newServe(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the directories below the source directory as tar streams over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	flags := cmd.Flags()
	flags.String("source", "", "source directory")
	flags.String("prefix", "", "url path prefix")
	flags.String("listen", "", "ip:port to listen")
	flags.String("append-file", "", "name of the version file appended to every archive")
	a.bind(flags.Lookup("source"), "serve.source")
	a.bind(flags.Lookup("prefix"), "serve.prefix")
	a.bind(flags.Lookup("listen"), "serve.listen")
	a.bind(flags.Lookup("append-file"), "serve.append-file")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	s := a.cfg.Serve
	handler := &tarserv.TarHandler{
		SourceDir:      s.SourceDir,
		AppendFileName: s.AppendFile,
		Exclude:        a.cfg.Exclusions,
		Fs:             a.fs,
	}
	log.Infof("serving %s on %s%s", s.SourceDir, s.Listen, s.Prefix)
	return tarserv.Serve(ctx, s.Listen, s.Prefix, handler)
}
