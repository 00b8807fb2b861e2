package remove

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util/helper"
)

var command = &cobra.Command{
	Use:     "remove {game}...",
	Aliases: []string{"rm"},
	Short:   "Remove games from the library.",
	Long: `Remove games from the library.
Each game arg is a game id, work number (e.g. "RJ01347095") or dir name.
By default the game dir is deleted from disk as well; use --keep-files to only
drop the index row and keep the files.`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
	RunE: remove,
}

var (
	force     = false
	keepFiles = false
)

func init() {
	command.Flags().BoolVarP(&force, "force", "f", false, "Force do action (Do NOT prompt for confirm)")
	command.Flags().BoolVarP(&keepFiles, "keep-files", "", false, "Keep game files on disk, only remove the index row")
	cmd.RootCmd.AddCommand(command)
}

func remove(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	var entries []*schema.LibraryEntry
	for _, arg := range args {
		entry, err := lib.Get(arg)
		if err != nil {
			return fmt.Errorf("failed to find game %q: %w", arg, err)
		}
		entries = append(entries, entry)
	}
	schema.PrintLibraryEntries(os.Stdout, "Games to remove", entries)
	if !force {
		tip := "Remove above games from library (game dirs are DELETED from disk)"
		if keepFiles {
			tip = "Remove above games from library (game dirs are kept on disk)"
		}
		if !helper.AskYesNoConfirm(tip) {
			return fmt.Errorf("abort")
		}
	}
	errorCnt := 0
	for i, entry := range entries {
		fmt.Printf("(%d/%d) ", i+1, len(entries))
		if err := lib.Remove(entry, keepFiles); err != nil {
			fmt.Printf("X %q: failed to remove: %v\n", entry.Title, err)
			errorCnt++
		} else {
			fmt.Printf("✓ %q: removed\n", entry.Title)
		}
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}
