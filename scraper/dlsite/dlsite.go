package dlsite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
)

const DLSITE = "dlsite"
const BASE_URL = "https://www.dlsite.com"

func init() {
	scraper.Register(&scraper.RegInfo{
		Name:    DLSITE,
		Creator: NewScraper,
	})
}

// Scraper fetches a work's metadata from both the product info api and the
// work page, then synthesizes one game record from whatever was available.
type Scraper struct {
	dispatcher     *httpclient.Dispatcher
	cfg            *config.Config
	images         *scraper.ImageSaver
	baseUrl        string
	excludedGenres []string
	excludedTags   []string
}

func NewScraper(dispatcher *httpclient.Dispatcher, cfg *config.Config) (scraper.Scraper, error) {
	return &Scraper{
		dispatcher:     dispatcher,
		cfg:            cfg,
		images:         scraper.NewImageSaver(dispatcher, DLSITE),
		baseUrl:        BASE_URL,
		excludedGenres: append(slices.Clone(defaultExcludedGenres), cfg.ExcludedGenres...),
		excludedTags:   append(slices.Clone(defaultExcludedTags), cfg.ExcludedTags...),
	}, nil
}

func (ds *Scraper) Name() string {
	return DLSITE
}

func (ds *Scraper) Match(input string) bool {
	_, err := ResolveWorkId(input)
	return err == nil
}

// Fetch retrieves the api record and the work page of the work found in input.
// Either source failing is tolerated as long as the other one yields data; the
// record is synthesized from whatever arrived.
func (ds *Scraper) Fetch(ctx context.Context, input string, options *scraper.Options) (*schema.Game, error) {
	if options == nil {
		options = &scraper.Options{}
	}
	workId, err := ResolveWorkId(input)
	if err != nil {
		return nil, err
	}
	locale := util.FirstNonZeroArg(options.Locale, ds.cfg.Locale)

	api, apiErr := ds.fetchApi(ctx, workId)
	if apiErr != nil {
		log.Warnf("dlsite %s: product info api is unavailable: %v", workId, apiErr)
	}
	var fields *PageFields
	doc, pageUrl, pageErr := ds.fetchPage(ctx, workId, locale)
	if pageErr != nil {
		log.Warnf("dlsite %s: work page is unavailable: %v", workId, pageErr)
	} else {
		fields = extractFields(doc, pageUrl, workId)
	}
	if apiErr != nil && pageErr != nil {
		if errors.Is(apiErr, scraper.ErrNotFound) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", workId, pageErr)
	}

	game := ds.synthesize(workId, api, fields, options)
	if !options.NoImages && options.SaveDir != "" {
		ds.downloadImages(ctx, game, api, fields, options)
	}
	return game, nil
}

// downloadImages saves the cover and up to options.MaxSamples sample images
// into the images subdir of options.SaveDir and records their game-dir
// relative ("/" seperated) paths in game. A failed cover degrades to the api
// image, then to none; a failed sample is skipped. Neither aborts the fetch.
func (ds *Scraper) downloadImages(ctx context.Context, game *schema.Game, api *ApiWork, fields *PageFields,
	options *scraper.Options) {
	imagesDir := filepath.Join(options.SaveDir, constants.IMAGES_DIR)
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		log.Warnf("dlsite %s: failed to create images dir: %v", game.DlsiteId, err)
		return
	}
	var coverUrls []string
	if fields != nil {
		coverUrls = append(coverUrls, fields.CoverImage)
	}
	if api != nil {
		coverUrls = append(coverUrls, api.WorkImage)
	}
	for _, coverUrl := range util.OmitemptySlice(coverUrls) {
		filename, err := ds.images.Save(ctx, coverUrl, imagesDir, game.DlsiteId, options.SequenceId)
		if err != nil {
			log.Warnf("dlsite %s: failed to download cover %s: %v", game.DlsiteId, coverUrl, err)
			continue
		}
		game.CoverImage = path.Join(constants.IMAGES_DIR, filename)
		break
	}
	if fields == nil || options.MaxSamples <= 0 {
		return
	}
	for _, sampleUrl := range fields.SampleImages {
		if len(game.SampleImages) >= options.MaxSamples {
			break
		}
		filename, err := ds.images.Save(ctx, sampleUrl, imagesDir, game.DlsiteId, options.SequenceId)
		if err != nil {
			log.Warnf("dlsite %s: failed to download sample %s: %v", game.DlsiteId, sampleUrl, err)
			continue
		}
		game.SampleImages = append(game.SampleImages, path.Join(constants.IMAGES_DIR, filename))
	}
}
