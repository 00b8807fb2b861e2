package steam

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

const STEAM = "steam"

var (
	// Store page url, e.g. "https://store.steampowered.com/app/1091500/The_Witcher_3/".
	storeUrlRegexp = regexp.MustCompile(`(?i)\bstore\.steampowered\.com/app/(?P<id>\d+)\b`)
	// "steam:1091500" or a bare "1091500".
	appIdRegexp = regexp.MustCompile(`(?i)^(steam:)?(?P<id>\d{1,10})$`)
)

func init() {
	scraper.Register(&scraper.RegInfo{
		Name:    STEAM,
		Creator: NewScraper,
	})
}

// Scraper is a stub. It resolves steam app ids from store urls but does not
// talk to steam: Fetch synthesizes a bare record from the app id alone.
type Scraper struct {
	cfg *config.Config
}

func NewScraper(dispatcher *httpclient.Dispatcher, cfg *config.Config) (scraper.Scraper, error) {
	return &Scraper{cfg: cfg}, nil
}

func (ss *Scraper) Name() string {
	return STEAM
}

func (ss *Scraper) Match(input string) bool {
	_, err := ResolveAppId(input)
	return err == nil
}

func (ss *Scraper) Fetch(ctx context.Context, input string, options *scraper.Options) (*schema.Game, error) {
	if options == nil {
		options = &scraper.Options{}
	}
	appId, err := ResolveAppId(input)
	if err != nil {
		return nil, err
	}
	id := STEAM + "_" + appId
	if options.SequenceId > 0 {
		id = fmt.Sprintf("%05d_%s", options.SequenceId, id)
	}
	return &schema.Game{
		Id:          id,
		Title:       "Steam app " + appId,
		Platform:    STEAM,
		Tags:        schema.Tags{"number:" + appId},
		AddedDate:   time.Now().Format("2006-01-02"),
		Description: fmt.Sprintf("%v: record synthesized from the steam app id only", scraper.ErrNotImplemented),
	}, nil
}

// ResolveAppId extracts a steam app id from input, which can be a store page
// url, a "steam:<appid>" identifier, or a bare numeric app id.
func ResolveAppId(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := storeUrlRegexp.FindStringSubmatch(input); m != nil {
		return m[storeUrlRegexp.SubexpIndex("id")], nil
	}
	if m := appIdRegexp.FindStringSubmatch(input); m != nil {
		return m[appIdRegexp.SubexpIndex("id")], nil
	}
	return "", fmt.Errorf("%w in %q", scraper.ErrNoIdentifier, input)
}
