package itchio

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
)

const ITCHIO = "itchio"

// Project page url, e.g. "https://anna-anthropy.itch.io/queers-in-love-at-the-end-of-the-world".
var pageUrlRegexp = regexp.MustCompile(`(?i)\b(?P<author>[a-z0-9][a-z0-9_-]*)\.itch\.io/(?P<slug>[a-z0-9_-]+)`)

func init() {
	scraper.Register(&scraper.RegInfo{
		Name:    ITCHIO,
		Creator: NewScraper,
	})
}

// Scraper is a stub. It recognizes itch.io project page urls but does not
// fetch them: Fetch synthesizes a bare record from the author and slug alone.
type Scraper struct {
	cfg *config.Config
}

func NewScraper(dispatcher *httpclient.Dispatcher, cfg *config.Config) (scraper.Scraper, error) {
	return &Scraper{cfg: cfg}, nil
}

func (is *Scraper) Name() string {
	return ITCHIO
}

func (is *Scraper) Match(input string) bool {
	_, _, err := ResolveWork(input)
	return err == nil
}

func (is *Scraper) Fetch(ctx context.Context, input string, options *scraper.Options) (*schema.Game, error) {
	if options == nil {
		options = &scraper.Options{}
	}
	author, slug, err := ResolveWork(input)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("%s_%s_%s", ITCHIO, author, slug)
	if options.SequenceId > 0 {
		id = fmt.Sprintf("%05d_%s", options.SequenceId, id)
	}
	return &schema.Game{
		Id:          id,
		Title:       slug,
		Developer:   author,
		Platform:    ITCHIO,
		AddedDate:   time.Now().Format("2006-01-02"),
		Description: fmt.Sprintf("%v: record synthesized from the itch.io page url only", scraper.ErrNotImplemented),
	}, nil
}

// ResolveWork extracts the author and project slug from an itch.io project
// page url.
func ResolveWork(input string) (author, slug string, err error) {
	input = strings.TrimSpace(input)
	if m := pageUrlRegexp.FindStringSubmatch(input); m != nil {
		author = strings.ToLower(m[pageUrlRegexp.SubexpIndex("author")])
		slug = strings.ToLower(m[pageUrlRegexp.SubexpIndex("slug")])
		if author != "www" { // "www.itch.io" is the site itself, not an author page
			return author, slug, nil
		}
	}
	return "", "", fmt.Errorf("%w in %q", scraper.ErrNoIdentifier, input)
}
