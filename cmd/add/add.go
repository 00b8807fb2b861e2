package add

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/archive"
	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/helper"
)

var command = &cobra.Command{
	Use:   "add {archive-file}...",
	Short: "Add games from archive files to the library.",
	Long: `Add games from archive files to the library.
Each archive is extracted into a new game dir inside librarydir, named after the
archive basename. Afterwards the metadata of the game is fetched, unless --no-fetch
is set. Filenames of non-UTF-8 zips are decoded using the configured zipmode.`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
	RunE: add,
}

var (
	noFetch      = false
	deleteFile   = false
	rename       = false
	noImages     = false
	zipmode      int
	maxSamples   int
	locale       string
	scraperNames string
)

func init() {
	command.Flags().BoolVarP(&noFetch, "no-fetch", "", false, "Do not fetch metadata after adding")
	command.Flags().BoolVarP(&deleteFile, "delete", "", false, "Delete the archive file after successfully adding it")
	command.Flags().BoolVarP(&rename, "rename", "r", false, "Rename the game dir to the canonical name afterwards")
	command.Flags().BoolVarP(&noImages, "no-images", "", false, "Do not download images")
	command.Flags().IntVarP(&zipmode, "zipmode", "", config.DEFAULT_ZIPMODE,
		"Zip filename encoding detection mode. 0 - strict; 1 - guess the best (shift_jis > gbk)")
	command.Flags().IntVarP(&maxSamples, "max-samples", "", -1,
		"Number limit of downloaded sample images per game. -1 == use config value")
	command.Flags().StringVarP(&locale, "locale", "", "",
		`Metadata page locale, e.g. "ja_JP". Empty: use config value`)
	command.Flags().StringVarP(&scraperNames, "scrapers", "", "", "Comma-seperated used scraper names. Empty: all")
	cmd.RootCmd.AddCommand(command)
}

func add(cmd *cobra.Command, args []string) (err error) {
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
		Rename:     rename,
	}
	if options.MaxSamples < 0 {
		options.MaxSamples = config.Data.MaxSamples
	}
	filenames := helper.ParseFilenameArgs(args...)
	errorCnt := 0
	for i, filename := range filenames {
		fmt.Printf("(%d/%d) ", i+1, len(filenames))
		dir, err := addOne(lib, filename)
		if err != nil {
			fmt.Printf("X %q: failed to add: %v\n", filename, err)
			errorCnt++
			continue
		}
		fetchTip := ""
		if !noFetch {
			game, err := lib.FetchOne(cmd.Context(), factory, dir, options)
			if err == nil {
				fetchTip = fmt.Sprintf(" (fetched %s)", game.Id)
			} else if errors.Is(err, scraper.ErrNoIdentifier) {
				fetchTip = " (no work id found, metadata not fetched)"
			} else {
				fmt.Printf("! %q: added to %q but failed to fetch metadata: %v\n", filename, dir, err)
				errorCnt++
				continue
			}
		}
		fmt.Printf("✓ %q: added to %q%s\n", filename, dir, fetchTip)
		if deleteFile {
			if err := os.Remove(filename); err != nil {
				fmt.Printf("! failed to delete %q: %v\n", filename, err)
			}
		}
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}

// addOne extracts an archive file into a new game dir inside the library root
// and returns the dir name.
func addOne(lib *library.Library, filename string) (dir string, err error) {
	if !archive.IsArchive(filename) {
		return "", fmt.Errorf("unsupported file type")
	}
	if err = archive.VerifyHeader(filename); err != nil {
		return "", err
	}
	basename := filepath.Base(filename)
	dirname := util.CleanBasename(strings.TrimSuffix(basename, filepath.Ext(basename)))
	if dirname == "" {
		return "", fmt.Errorf("invalid archive filename")
	}
	tmpdir := filepath.Join(lib.Root(), constants.TMP_DIR, "add-"+dirname)
	if err = util.MakeCleanTmpDir(tmpdir); err != nil {
		return "", fmt.Errorf("failed to create tmp dir: %w", err)
	}
	defer os.RemoveAll(tmpdir)
	if _, err = archive.Extract(filename, tmpdir, zipmode); err != nil {
		return "", fmt.Errorf("failed to extract: %w", err)
	}
	// If the archive wraps everything in a single top dir, strip that dir.
	src := tmpdir
	if entries, err := os.ReadDir(tmpdir); err == nil && len(entries) == 1 && entries[0].IsDir() {
		src = filepath.Join(tmpdir, entries[0].Name())
	}
	fullpath := helper.GetNewFilePath(lib.Root(), dirname)
	if err = atomic.ReplaceFile(src, fullpath); err != nil {
		return "", fmt.Errorf("failed to move game dir: %w", err)
	}
	return filepath.Base(fullpath), nil
}
