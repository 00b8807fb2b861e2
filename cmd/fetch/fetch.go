package fetch

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/util"
)

var command = &cobra.Command{
	Use:   "fetch {dir | id | url}...",
	Short: "Fetch metadata of games.",
	Long: `Fetch metadata of games.
Each arg is a game dir name (relative to librarydir), a bare work id (e.g. "RJ01347095")
or a work page url. For a game dir, the work id is derived from the dir name and the
fetched record is saved inside it; for a bare id or url a new game dir is created
inside librarydir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: fetch,
}

var (
	force        = false
	rename       = false
	noImages     = false
	maxSamples   int
	locale       string
	scraperNames string
)

func init() {
	command.Flags().BoolVarP(&force, "force", "f", false, "Do refetch even if a record already exists")
	command.Flags().BoolVarP(&rename, "rename", "r", false, "Rename the game dir to the canonical name afterwards")
	command.Flags().BoolVarP(&noImages, "no-images", "", false, "Do not download images")
	command.Flags().IntVarP(&maxSamples, "max-samples", "", -1,
		"Number limit of downloaded sample images per game. -1 == use config value")
	command.Flags().StringVarP(&locale, "locale", "", "",
		`Metadata page locale, e.g. "ja_JP". Empty: use config value`)
	command.Flags().StringVarP(&scraperNames, "scrapers", "", "", "Comma-seperated used scraper names. Empty: all")
	cmd.RootCmd.AddCommand(command)
}

func fetch(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	factory, err := common.NewFactory()
	if err != nil {
		return err
	}
	options := &library.FetchOptions{
		Scrapers:   util.SplitCsv(scraperNames),
		Locale:     util.FirstNonZeroArg(locale, config.Data.Locale),
		MaxSamples: maxSamples,
		NoImages:   noImages,
		Force:      force,
		Rename:     rename,
	}
	if options.MaxSamples < 0 {
		options.MaxSamples = config.Data.MaxSamples
	}
	errorCnt := 0
	for i, input := range args {
		fmt.Printf("(%d/%d) ", i+1, len(args))
		game, err := lib.FetchOne(cmd.Context(), factory, input, options)
		if err == nil {
			fmt.Printf("✓ %q: fetched %s (%s)\n", input, game.Id, game.Title)
		} else if errors.Is(err, library.ErrRecordExists) {
			fmt.Printf("- %q: record exists (use --force to refetch)\n", input)
		} else {
			fmt.Printf("X %q: failed to fetch: %v\n", input, err)
			errorCnt++
		}
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}
