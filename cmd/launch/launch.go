package launch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "launch {game}",
	Short: "Launch a game.",
	Long: `Launch a game.
The game arg is a game id, work number (e.g. "RJ01347095") or dir name.
The executable is taken from the metadata record; when the record names none,
the game dir is searched for one and the choice is remembered.
The "launchcommand" config value wraps the executable, e.g. launchcommand = "wine".`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: launch,
}

var launchCommand string

func init() {
	command.Flags().StringVarP(&launchCommand, "launch-command", "", "",
		`Wrapper command that launches the game executable, e.g. "wine". Empty: use config value`)
	cmd.RootCmd.AddCommand(command)
}

func launch(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	entry, err := lib.Get(args[0])
	if err != nil {
		return err
	}
	if err = lib.Launch(entry, util.FirstNonZeroArg(launchCommand, config.Data.LaunchCommand)); err != nil {
		return fmt.Errorf("failed to launch %q: %w", entry.Title, err)
	}
	fmt.Printf("✓ launched %s (%s)\n", entry.Title, entry.GameId)
	return nil
}
