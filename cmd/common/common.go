// Package common holds helpers and flag definitions shared by subcommands.
package common

import (
	"slices"
	"strings"
	"time"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/flags"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
)

// OpenLibrary opens the game library at the configured librarydir.
func OpenLibrary() (*library.Library, error) {
	libraryDir, err := config.GetLibraryDir()
	if err != nil {
		return nil, err
	}
	return library.Open(libraryDir, config.Db)
}

// NewDispatcher creates a http dispatcher from config file values and
// global flags. The --proxy flag takes priority over the config file.
func NewDispatcher() (*httpclient.Dispatcher, error) {
	return httpclient.NewDispatcher(&httpclient.Options{
		Proxy:     util.FirstNonZeroArg(flags.Proxy, config.Data.Proxy),
		UserAgent: config.Data.UserAgent,
		Timeout:   time.Second * time.Duration(config.Data.Timeout),
		Cookies:   config.Data.Cookies,
	})
}

// NewFactory creates a scraper factory bound to a fresh dispatcher.
func NewFactory() (*scraper.Factory, error) {
	dispatcher, err := NewDispatcher()
	if err != nil {
		return nil, err
	}
	return scraper.NewFactory(dispatcher, config.Data), nil
}

// SortGames sorts entries in place by a GameSortFlag field and a OrderFlag order.
func SortGames(entries []*schema.LibraryEntry, sort string, order string) {
	if sort == constants.NONE {
		return
	}
	less, more := -1, 1
	if order == "desc" {
		less, more = more, less
	}
	slices.SortStableFunc(entries, func(a, b *schema.LibraryEntry) int {
		switch sort {
		case "title":
			if cmp := strings.Compare(a.Title, b.Title); cmp < 0 {
				return less
			} else if cmp > 0 {
				return more
			}
		case "developer":
			if cmp := strings.Compare(a.Developer, b.Developer); cmp < 0 {
				return less
			} else if cmp > 0 {
				return more
			}
		case "added":
			if a.ID < b.ID {
				return less
			} else if a.ID > b.ID {
				return more
			}
		case "played":
			if a.LastPlayed < b.LastPlayed {
				return less
			} else if a.LastPlayed > b.LastPlayed {
				return more
			}
		case "playcount":
			if a.PlayCount < b.PlayCount {
				return less
			} else if a.PlayCount > b.PlayCount {
				return more
			}
		}
		return 0
	})
}
