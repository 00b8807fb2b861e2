package reindex

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
)

var command = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the library index from the record files.",
	Long: `Rebuild the library index from the record files.
Loads the metadata record of every game dir under librarydir and upserts its
index row. Use it after restoring a library from a backup or moving it between
machines. With --prune, index rows of game dirs that no longer exist on disk
are dropped as well.`,
	Args: cobra.MatchAll(cobra.ExactArgs(0), cobra.OnlyValidArgs),
	RunE: reindex,
}

var prune = false

func init() {
	command.Flags().BoolVarP(&prune, "prune", "", false, "Also drop index rows of game dirs that no longer exist")
	cmd.RootCmd.AddCommand(command)
}

func reindex(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	count, err := lib.Reindex()
	if err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}
	fmt.Printf("✓ indexed %d games\n", count)
	if prune {
		dirs, err := lib.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune: %w", err)
		}
		for _, dir := range dirs {
			fmt.Printf("- pruned %q\n", dir)
		}
		fmt.Printf("✓ pruned %d index rows\n", len(dirs))
	}
	return nil
}
