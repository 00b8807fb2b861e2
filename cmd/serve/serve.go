package serve

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/tunnel"
	"github.com/sagan/erolauncher/web"
)

var command = &cobra.Command{
	Use:   "serve",
	Short: "Run the web api server.",
	Long: `Run the web api server.
Serves the library over a json api at the configured port, protected by the
"token" config value if set. When a [vpn] config section exists, the server
owns a vpn tunnel that the fetch api and the "erolauncher vpn" subcommands
can connect and disconnect.`,
	Args: cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE: serve,
}

func init() {
	cmd.RootCmd.AddCommand(command)
}

func serve(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	factory, err := common.NewFactory()
	if err != nil {
		return err
	}
	var controller *tunnel.Controller
	if config.Data.Vpn != nil {
		if controller, err = tunnel.NewController(config.Data.Vpn); err != nil {
			log.Warnf("vpn is configured but unusable: %v", err)
			controller = nil
		}
	}
	return web.Start(lib, factory, controller)
}
