package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/schema"
)

var (
	// The input does not contain any work identifier that a scraper recognizes.
	ErrNoIdentifier = errors.New("no work identifier found")
	// The platform has no entry of the work.
	ErrNotFound = errors.New("work not found")
	// The platform scraper is a stub.
	ErrNotImplemented = errors.New("scraper not implemented")
)

// Options of a single Fetch call.
type Options struct {
	SequenceId int    // > 0 : the record sequence number issued by the library
	SaveDir    string // game dir. Images are saved to its constants.IMAGES_DIR subdir
	Locale     string // metadata page locale, e.g. "ja_JP", "en_US". Empty: site default
	MaxSamples int    // max count of sample images to download. <= 0 : skip samples
	NoImages   bool   // do not download any image
}

type Scraper interface {
	Name() string
	// Whether input (a dir name, file name, url or bare id) contains a work id
	// that this scraper recognizes. Must be cheap and side effect free.
	Match(input string) bool
	// Fetch metadata of the work identified by input and synthesize a game record.
	Fetch(ctx context.Context, input string, options *Options) (*schema.Game, error)
}

type RegInfo struct {
	Name    string
	Creator func(dispatcher *httpclient.Dispatcher, cfg *config.Config) (Scraper, error)
}

var (
	mu          sync.Mutex
	registryMap = map[string]*RegInfo{}
	registry    []*RegInfo // in registration order
)

func Register(regInfo *RegInfo) {
	mu.Lock()
	defer mu.Unlock()
	registryMap[regInfo.Name] = regInfo
	registry = append(registry, regInfo)
}

// Names of all registered scrapers, in registration order.
func Names() (names []string) {
	mu.Lock()
	defer mu.Unlock()
	for _, regInfo := range registry {
		names = append(names, regInfo.Name)
	}
	return
}

// Factory creates scraper instances bound to one dispatcher + config,
// memoizing them by name.
type Factory struct {
	dispatcher *httpclient.Dispatcher
	cfg        *config.Config
	mu         sync.Mutex
	scrapers   map[string]Scraper
}

func NewFactory(dispatcher *httpclient.Dispatcher, cfg *config.Config) *Factory {
	return &Factory{
		dispatcher: dispatcher,
		cfg:        cfg,
		scrapers:   map[string]Scraper{},
	}
}

func (f *Factory) Create(name string) (Scraper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scrapers[name] != nil {
		return f.scrapers[name], nil
	}
	mu.Lock()
	regInfo := registryMap[name]
	mu.Unlock()
	if regInfo == nil {
		return nil, fmt.Errorf("unsupported scraper %s", name)
	}
	instance, err := regInfo.Creator(f.dispatcher, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper %s: %w", name, err)
	}
	f.scrapers[name] = instance
	return instance, nil
}

// All scrapers, in registration order. If names is provided, only those.
func (f *Factory) All(names ...string) (scrapers []Scraper, err error) {
	if len(names) == 0 {
		names = Names()
	}
	for _, name := range names {
		scraper, err := f.Create(name)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, scraper)
	}
	return scrapers, nil
}

// Find the first scraper whose Match accepts input. If names is provided,
// only those scrapers are considered. Return ErrNoIdentifier if none matches.
func (f *Factory) Find(input string, names ...string) (Scraper, error) {
	scrapers, err := f.All(names...)
	if err != nil {
		return nil, err
	}
	for _, scraper := range scrapers {
		if scraper.Match(input) {
			return scraper, nil
		}
	}
	return nil, fmt.Errorf("%w in %q", ErrNoIdentifier, input)
}
