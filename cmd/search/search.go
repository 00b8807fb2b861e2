package search

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "search {query}...",
	Short: "Search games in the library.",
	Long: `Search games in the library.
Matches the query against title, developer, work number, genre and tags.
Multiple query args are joined with spaces.`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
	RunE: search,
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

func search(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	entries, err := lib.Search(query)
	if err != nil {
		return err
	}
	common.SortGames(entries, sort, order)
	if showJson {
		return util.PrintJson(os.Stdout, entries)
	}
	schema.PrintLibraryEntries(os.Stdout, "Search results", entries)
	return nil
}
