package cli

import (
	"github.com/spf13/cobra"

	"github.com/rickgao/tickmerge/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("filemerger " + version.String())
		},
	}
}
