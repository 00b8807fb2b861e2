package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/helper"
)

var ErrRecordExists = errors.New("record already exists")

// Matches game ids issued with a record sequence number prefix.
var seqPrefixRegexp = regexp.MustCompile(`^(\d{5})_`)

type FetchOptions struct {
	Scrapers   []string // restrict to these scrapers. Empty: all registered ones
	Locale     string
	MaxSamples int
	NoImages   bool
	Force      bool // refetch dirs that already have a record
	Rename     bool // normalize the game dir name afterwards
}

// FetchOne acquires the metadata record of input and saves it into the
// library. input is either the name of a game dir under the library root
// (the dir name must contain a recognizable work id) or a bare work id / url,
// in which case a new game dir is created. Without Force, a dir that already
// has a record is returned as is together with ErrRecordExists.
func (l *Library) FetchOne(ctx context.Context, factory *scraper.Factory, input string,
	options *FetchOptions) (*schema.Game, error) {
	if options == nil {
		options = &FetchOptions{}
	}
	scraperInstance, err := factory.Find(input, options.Scrapers...)
	if err != nil {
		return nil, err
	}
	dir := "" // game dir mode when set
	if input != "" && !strings.ContainsAny(input, `/\`) {
		if stat, err := os.Stat(filepath.Join(l.root, input)); err == nil && stat.IsDir() {
			dir = input
		}
	}
	var existing *schema.Game
	if dir != "" && util.FileExists(filepath.Join(l.GameDir(dir), constants.METADATA_FILENAME)) {
		if existing, err = l.Load(dir); err != nil {
			log.Warnf("failed to load existing record of %s: %v", dir, err)
			existing = nil
		}
		if existing != nil && !options.Force {
			return existing, fmt.Errorf("%w: %s", ErrRecordExists, dir)
		}
	}
	// a force refetch keeps the sequence number of the old record so the game
	// id stays stable
	seq := 0
	if existing != nil {
		if m := seqPrefixRegexp.FindStringSubmatch(existing.Id); m != nil {
			seq, _ = strconv.Atoi(m[1])
		}
	}
	if seq == 0 {
		if seq, err = l.NextSequenceId(); err != nil {
			return nil, err
		}
	}

	saveDir := ""
	tmpdir := ""
	if dir != "" {
		saveDir = l.GameDir(dir)
	} else {
		// fetch into a tmp dir first: the final dir name needs the title
		tmpdir = filepath.Join(l.root, constants.TMP_DIR, fmt.Sprintf("fetch-%d", seq))
		if err = util.MakeCleanTmpDir(tmpdir); err != nil {
			return nil, fmt.Errorf("failed to create tmp dir: %w", err)
		}
		defer os.RemoveAll(tmpdir)
		saveDir = tmpdir
	}

	game, err := scraperInstance.Fetch(ctx, input, &scraper.Options{
		SequenceId: seq,
		SaveDir:    saveDir,
		Locale:     options.Locale,
		MaxSamples: options.MaxSamples,
		NoImages:   options.NoImages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", input, err)
	}
	if existing != nil {
		game.AddedDate = util.FirstNonZeroArg(existing.AddedDate, game.AddedDate)
		game.ExecutablePath = existing.ExecutablePath
	}
	if dir != "" {
		game.Dir = dir
	} else {
		dirname := game.GetDirname()
		if dirname == "" {
			dirname = game.Id
		}
		fullpath := helper.GetNewFilePath(l.root, dirname)
		if err = atomic.ReplaceFile(tmpdir, fullpath); err != nil {
			return nil, fmt.Errorf("failed to move game dir: %w", err)
		}
		game.Dir = filepath.Base(fullpath)
	}
	if err = l.Save(game); err != nil {
		return nil, err
	}
	if options.Rename {
		if err = l.Rename(game, game.GetDirname()); err != nil {
			log.Warnf("failed to rename game dir %s: %v", game.Dir, err)
		}
	}
	return game, nil
}
