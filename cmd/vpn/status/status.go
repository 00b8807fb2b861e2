package status

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd/vpn"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "status",
	Short: "Show the tunnel status of the running server.",
	Long:  `Show the tunnel status of the running server.`,
	Args:  cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE:  status,
}

func init() {
	vpn.Command.AddCommand(command)
}

func status(cmd *cobra.Command, args []string) (err error) {
	data, err := vpn.CallApi(cmd.Context(), "status")
	if err != nil {
		return err
	}
	return util.PrintJson(os.Stdout, data)
}
