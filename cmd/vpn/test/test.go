package test

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd/vpn"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/tunnel"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "test",
	Short: "Run a tunnel in foreground to verify the vpn config.",
	Long: `Run a tunnel in foreground to verify the vpn config.
Connects the tunnel, prints its status, then keeps it up until interrupted
(Ctrl-C), at which point the tunnel is disconnected cleanly.`,
	Args: cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE: test,
}

func init() {
	vpn.Command.AddCommand(command)
}

func test(cmd *cobra.Command, args []string) (err error) {
	if config.Data.Vpn == nil {
		return fmt.Errorf("vpn is not configured. Add a [vpn] section to %s", config.ConfigFile)
	}
	controller, err := tunnel.NewController(config.Data.Vpn)
	if err != nil {
		return err
	}
	fmt.Printf("Connecting tunnel (press Ctrl-C to stop)\n")
	if err = controller.Connect(cmd.Context()); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	util.PrintJson(os.Stdout, controller.Status())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	fmt.Printf("Disconnecting\n")
	return controller.Disconnect()
}
