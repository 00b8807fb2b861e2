package batch

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/mithrandie/csvq-driver"
	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/cmd/common"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/helper"
)

// Max count of in-flight fetches.
const WORKERS = 3

var command = &cobra.Command{
	Use:   "batch {index-file}",
	Short: "Batch fetch games listed in a csv or xlsx index file.",
	Long: `Batch fetch games listed in a csv or xlsx index file.
The index file must have a header row. The --column column holds the work ids
(e.g. "RJ01347095"); a xlsx index file is converted to csv first. Work ids that
are already in the library are skipped.`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: batch,
}

var (
	dryRun       = false
	force        = false
	noImages     = false
	maxSamples   int
	limit        int
	column       string
	where        string
	locale       string
	scraperNames string
)

func init() {
	command.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Dry run. List work ids without fetching")
	command.Flags().BoolVarP(&force, "force", "f", false, "Force do action (Do NOT prompt for confirm)")
	command.Flags().BoolVarP(&noImages, "no-images", "", false, "Do not download images")
	command.Flags().IntVarP(&maxSamples, "max-samples", "", -1,
		"Number limit of downloaded sample images per game. -1 == use config value")
	command.Flags().IntVarP(&limit, "limit", "", -1, "Number limit of fetched games. -1 == no limit")
	command.Flags().StringVarP(&column, "column", "", "number", "Name of the index file column that holds work ids")
	command.Flags().StringVarP(&where, "where", "", "", "Raw SQL condition of selected index file rows")
	command.Flags().StringVarP(&locale, "locale", "", "",
		`Metadata page locale, e.g. "ja_JP". Empty: use config value`)
	command.Flags().StringVarP(&scraperNames, "scrapers", "", "", "Comma-seperated used scraper names. Empty: all")
	cmd.RootCmd.AddCommand(command)
}

func batch(cmd *cobra.Command, args []string) (err error) {
	lib, err := common.OpenLibrary()
	if err != nil {
		return err
	}
	ids, err := readIds(args[0])
	if err != nil {
		return fmt.Errorf("failed to read index file: %w", err)
	}
	ids = util.UniqueSlice(ids)
	var newIds []string
	for _, id := range ids {
		if _, err := lib.Get(id); err == nil {
			continue
		}
		newIds = append(newIds, id)
	}
	if limit > 0 && limit < len(newIds) {
		newIds = newIds[:limit]
	}
	fmt.Printf("Index file has %d work ids. %d already in library, %d to fetch\n",
		len(ids), len(ids)-len(newIds), len(newIds))
	if len(newIds) == 0 {
		return nil
	}
	if dryRun {
		for _, id := range newIds {
			fmt.Printf("+ %q\n", id)
		}
		return nil
	}
	if !force && !helper.AskYesNoConfirm(fmt.Sprintf("Fetch above %d games into library", len(newIds))) {
		return fmt.Errorf("abort")
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
	}
	if options.MaxSamples < 0 {
		options.MaxSamples = config.Data.MaxSamples
	}

	var cnt, errorCnt atomic.Int32
	workers := WORKERS
	if workers > len(newIds) {
		workers = len(newIds)
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				i := cnt.Add(1)
				game, err := lib.FetchOne(cmd.Context(), factory, id, options)
				if err == nil {
					fmt.Printf("(%d/%d) ✓ %q: fetched %s (%s)\n", i, len(newIds), id, game.Id, game.Title)
				} else if errors.Is(err, scraper.ErrNoIdentifier) {
					fmt.Printf("(%d/%d) - %q: no scraper recognizes it. skip it\n", i, len(newIds), id)
				} else {
					fmt.Printf("(%d/%d) X %q: failed to fetch: %v\n", i, len(newIds), id, err)
					errorCnt.Add(1)
				}
			}
		}()
	}
	for _, id := range newIds {
		jobs <- id
	}
	close(jobs)
	wg.Wait()
	if errorCnt.Load() > 0 {
		return fmt.Errorf("%d errors", errorCnt.Load())
	}
	return nil
}

// readIds reads the work id column from a csv / xlsx index file,
// dropping empty and literal "null" cells.
func readIds(indexFile string) (ids []string, err error) {
	if strings.HasSuffix(indexFile, ".xlsx") || strings.HasSuffix(indexFile, ".xls") {
		csvfile := indexFile + ".csv"
		xlsxStat, err := os.Stat(indexFile)
		if err != nil {
			return nil, err
		}
		if csvStat, err := os.Stat(csvfile); err != nil || csvStat.ModTime().Unix() < xlsxStat.ModTime().Unix() {
			if err := util.Xlsx2Csv(indexFile); err != nil {
				return nil, fmt.Errorf("failed to generate csv: %w", err)
			}
		}
		indexFile = csvfile
	}
	fullpath, err := filepath.Abs(indexFile)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("csvq", filepath.Dir(fullpath))
	if err != nil {
		return nil, fmt.Errorf("failed to create index db: %w", err)
	}
	defer db.Close()
	sqlStr := fmt.Sprintf("SELECT `%s` FROM %s WHERE 1 = 1 ",
		column, fmt.Sprintf("`%s`", filepath.Base(fullpath)))
	if where != "" {
		sqlStr += fmt.Sprintf("and ( %s ) ", where)
	}
	log.Tracef("sql: %s", sqlStr)
	var values []sql.NullString
	if err = db.Select(&values, sqlStr); err != nil {
		return nil, err
	}
	for _, value := range values {
		id := strings.TrimSpace(value.String)
		if id == "" || id == "null" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
