package scan

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
)

// Max count of in-flight fetches.
const WORKERS = 3

var command = &cobra.Command{
	Use:   "scan",
	Short: "Scan librarydir for new game dirs and fetch their metadata.",
	Long: `Scan librarydir for new game dirs and fetch their metadata.
A game dir is new if it has no metadata record file and no library index row.
Dirs matching the "ignorepatterns" config values (gitignore style) are skipped.
Dirs whose name contains no recognizable work id are reported and left alone.`,
	Args: cobra.ExactArgs(0),
	RunE: scan,
}

var (
	dryRun       = false
	rename       = false
	noImages     = false
	maxSamples   int
	locale       string
	scraperNames string
)

func init() {
	command.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Dry run. List new game dirs without fetching")
	command.Flags().BoolVarP(&rename, "rename", "r", false, "Rename game dirs to the canonical name afterwards")
	command.Flags().BoolVarP(&noImages, "no-images", "", false, "Do not download images")
	command.Flags().IntVarP(&maxSamples, "max-samples", "", -1,
		"Number limit of downloaded sample images per game. -1 == use config value")
	command.Flags().StringVarP(&locale, "locale", "", "",
		`Metadata page locale, e.g. "ja_JP". Empty: use config value`)
	command.Flags().StringVarP(&scraperNames, "scrapers", "", "", "Comma-seperated used scraper names. Empty: all")
	cmd.RootCmd.AddCommand(command)
}

func scan(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	dirs, err := lib.FindUnregistered(config.Data.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}
	if len(dirs) == 0 {
		fmt.Printf("No new game dirs found\n")
		return nil
	}
	if dryRun {
		for _, dir := range dirs {
			fmt.Printf("+ %q\n", dir)
		}
		fmt.Printf("Found %d new game dirs\n", len(dirs))
		return nil
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
		Rename:     rename,
	}
	if options.MaxSamples < 0 {
		options.MaxSamples = config.Data.MaxSamples
	}

	var cnt, errorCnt atomic.Int32
	workers := WORKERS
	if workers > len(dirs) {
		workers = len(dirs)
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				i := cnt.Add(1)
				game, err := lib.FetchOne(cmd.Context(), factory, dir, options)
				if err == nil {
					fmt.Printf("(%d/%d) ✓ %q: fetched %s (%s)\n", i, len(dirs), dir, game.Id, game.Title)
				} else if errors.Is(err, scraper.ErrNoIdentifier) {
					fmt.Printf("(%d/%d) - %q: no work id in dir name. skip it\n", i, len(dirs), dir)
				} else {
					fmt.Printf("(%d/%d) X %q: failed to fetch: %v\n", i, len(dirs), dir, err)
					errorCnt.Add(1)
				}
			}
		}()
	}
	for _, dir := range dirs {
		jobs <- dir
	}
	close(jobs)
	wg.Wait()
	if errorCnt.Load() > 0 {
		return fmt.Errorf("%d errors", errorCnt.Load())
	}
	return nil
}
