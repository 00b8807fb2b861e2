package disconnect

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd/vpn"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "disconnect",
	Short: "Ask the running server to disconnect its tunnel.",
	Long: `Ask the running server to disconnect its tunnel.
Disconnecting an already disconnected tunnel is a no-op.`,
	Args: cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE: disconnect,
}

func init() {
	vpn.Command.AddCommand(command)
}

func disconnect(cmd *cobra.Command, args []string) (err error) {
	data, err := vpn.CallApi(cmd.Context(), "disconnect")
	if err != nil {
		return err
	}
	return util.PrintJson(os.Stdout, data)
}
