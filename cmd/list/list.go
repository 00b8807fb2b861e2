package list

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List games in the library.",
	Long:    `List games in the library.`,
	Args:    cobra.ExactArgs(0),
	RunE:    list,
}

var (
	showJson = false
	sort     string
	order    string
)

func init() {
	command.Flags().BoolVarP(&showJson, "json", "", false, "Show output in json format")
	cmd.AddEnumFlagP(command, &sort, "sort", "", common.GameSortFlag)
	cmd.AddEnumFlagP(command, &order, "order", "", common.OrderFlag)
	cmd.RootCmd.AddCommand(command)
}

func list(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	entries, err := lib.List()
	if err != nil {
		return err
	}
	common.SortGames(entries, sort, order)
	if showJson {
		return util.PrintJson(os.Stdout, entries)
	}
	schema.PrintLibraryEntries(os.Stdout, "Games", entries)
	return nil
}
