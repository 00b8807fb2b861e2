package vpn

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/web"
)

var Command = &cobra.Command{
	Use:   "vpn",
	Short: "Control the vpn tunnel used for metadata fetching.",
	Long: `Control the vpn tunnel used for metadata fetching.
The status / connect / disconnect subcommands drive the tunnel owned by a running
"erolauncher serve" instance through its web api. The test subcommand runs a
tunnel in foreground to verify the vpn config.`,
}

func init() {
	cmd.RootCmd.AddCommand(Command)
}

// CallApi sends an action to the vpn api of the running server instance
// and returns the response data.
func CallApi(ctx context.Context, action string) (any, error) {
	dispatcher, err := common.NewDispatcher()
	if err != nil {
		return nil, err
	}
	defer dispatcher.Close()
	apiUrl := fmt.Sprintf("http://localhost:%d/api/vpn?action=%s", config.Data.Port, url.QueryEscape(action))
	if config.Data.Token != "" {
		apiUrl += "&token=" + url.QueryEscape(config.Data.Token)
	}
	res, err := dispatcher.FetchUrl(ctx, apiUrl, nil)
	if res == nil {
		return nil, fmt.Errorf(`failed to connect to server (is "erolauncher serve" running?): %w`, err)
	}
	// The server puts handler errors into the response body, parse it even on 5xx.
	response, err := util.UnmarshalJson[web.Response](res.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid server response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("server: %s", response.Message)
	}
	return response.Data, nil
}
