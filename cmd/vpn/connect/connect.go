package connect

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd/vpn"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "connect",
	Short: "Ask the running server to connect its tunnel.",
	Long: `Ask the running server to connect its tunnel.
Blocks until the tunnel is connected or the server gives up.`,
	Args: cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE: connect,
}

func init() {
	vpn.Command.AddCommand(command)
}

func connect(cmd *cobra.Command, args []string) (err error) {
	data, err := vpn.CallApi(cmd.Context(), "connect")
	if err != nil {
		return err
	}
	return util.PrintJson(os.Stdout, data)
}
