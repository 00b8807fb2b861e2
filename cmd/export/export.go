package export

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "export {file}",
	Short: "Export the library index to a csv or xlsx file.",
	Long: `Export the library index to a csv or xlsx file.
The output format is chosen by the file extension (".csv" or ".xlsx").
The exported file can be fed back to "erolauncher batch" on another machine
to rebuild the same library there.`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: export,
}

var (
	sort  string
	order string
)

func init() {
	cmd.AddEnumFlagP(command, &sort, "sort", "", common.GameSortFlag)
	cmd.AddEnumFlagP(command, &order, "order", "", common.OrderFlag)
	cmd.RootCmd.AddCommand(command)
}

func export(cmd *cobra.Command, args []string) (err error) {
	filename := args[0]
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	entries, err := lib.List()
	if err != nil {
		return err
	}
	common.SortGames(entries, sort, order)
	rows := [][]string{
		{"id", "number", "platform", "title", "developer", "genre", "dir", "last_played", "play_count", "tags"},
	}
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.GameId,
			entry.Number,
			entry.Platform,
			entry.Title,
			entry.Developer,
			entry.Genre,
			entry.Dir,
			util.FormatTime(entry.LastPlayed),
			fmt.Sprint(entry.PlayCount),
			strings.Join(entry.Tags, ","),
		})
	}
	switch {
	case strings.HasSuffix(filename, ".csv"):
		err = util.WriteCsv(filename, rows)
	case strings.HasSuffix(filename, ".xlsx"):
		err = util.WriteXlsx(filename, rows)
	default:
		return fmt.Errorf(`unsupported file extension (use ".csv" or ".xlsx")`)
	}
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	fmt.Printf("✓ exported %d games to %q\n", len(entries), filename)
	return nil
}
