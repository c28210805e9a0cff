package cli

import (
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/splitting"
)

func newSplit(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "split ARCHIVE",
		Short: "Cut an archive at the entry boundary after its middle, moving the tail to ARCHIVE" + splitting.PartSuffix,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := splitting.SplitTarMiddle(a.fs, args[0]); err != nil {
				return err
			}
			log.Infof("split %s", args[0])
			return nil
		},
	}
}
