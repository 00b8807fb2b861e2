package normalize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util/helper"
)

var command = &cobra.Command{
	Use:   "normalize [game]...",
	Short: "Rename game dirs to their canonical names.",
	Long: `Rename game dirs to their canonical names.
The canonical dir name of a game is "[number][developer]title", derived from its
metadata record. Without args all games in the library are processed; each game
arg is a game id, work number or dir name.`,
	RunE: normalize,
}

var (
	dryRun = false
	force  = false
)

func init() {
	command.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Dry run. List renames without doing them")
	command.Flags().BoolVarP(&force, "force", "f", false, "Force do action (Do NOT prompt for confirm)")
	cmd.RootCmd.AddCommand(command)
}

func normalize(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	var entries []*schema.LibraryEntry
	if len(args) == 0 {
		if entries, err = lib.List(); err != nil {
			return err
		}
	} else {
		for _, arg := range args {
			entry, err := lib.Get(arg)
			if err != nil {
				return fmt.Errorf("failed to find game %q: %w", arg, err)
			}
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		fmt.Printf("No games in library\n")
		return nil
	}
	if !dryRun && !force && !helper.AskYesNoConfirm(
		fmt.Sprintf("Rename game dirs of %d games to canonical names", len(entries))) {
		return fmt.Errorf("abort")
	}
	errorCnt := 0
	for i, entry := range entries {
		fmt.Printf("(%d/%d) ", i+1, len(entries))
		game, err := lib.Load(entry.Dir)
		if err != nil {
			fmt.Printf("X %q: failed to load record: %v\n", entry.Dir, err)
			errorCnt++
			continue
		}
		newDir := game.GetDirname()
		if newDir == "" || newDir == game.Dir {
			fmt.Printf("- %q: no_changes\n", entry.Dir)
			continue
		}
		if dryRun {
			fmt.Printf("→ %q => %q\n", entry.Dir, newDir)
			continue
		}
		if err := lib.Rename(game, newDir); err != nil {
			fmt.Printf("X %q => %q: %v\n", entry.Dir, newDir, err)
			errorCnt++
		} else {
			fmt.Printf("✓ %q => %q\n", entry.Dir, game.Dir)
		}
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}
