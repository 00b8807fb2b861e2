package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Noooste/azuretls-client"
	"github.com/h2non/filetype"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/helper"
)

// ImageSaver downloads work images (cover / samples) into a dir, naming files
// deterministically by sequence id + work number, and caching downloaded urls
// in memory so the same url is fetched at most once per saver.
type ImageSaver struct {
	dispatcher *httpclient.Dispatcher
	platform   string

	mu    sync.Mutex
	cache map[string]string // absolute url => saved filename
}

func NewImageSaver(dispatcher *httpclient.Dispatcher, platform string) *ImageSaver {
	return &ImageSaver{
		dispatcher: dispatcher,
		platform:   platform,
		cache:      map[string]string{},
	}
}

// The deterministic image filename (without ext): sequence id as fixed-width
// hex ("00001" when unset), platform tag, lower-cased work number.
func imageBasename(sequenceId int, platform string, number string) string {
	if sequenceId <= 0 {
		sequenceId = 1
	}
	return fmt.Sprintf("%05x_%s_%s", sequenceId, platform, strings.ToLower(number))
}

// Save downloads imgUrl into dir and returns the saved filename.
// An empty imgUrl returns "" without error: a missing image is an expected,
// non-exceptional case. A non-2xx response returns a *httpclient.StatusError,
// which callers usually degrade on rather than abort.
// Already downloaded urls are reused without re-fetching.
func (s *ImageSaver) Save(ctx context.Context, imgUrl string, dir string, number string, sequenceId int) (
	filename string, err error) {
	if imgUrl == "" {
		return "", nil
	}
	s.mu.Lock()
	if filename, ok := s.cache[imgUrl]; ok {
		s.mu.Unlock()
		return filename, nil
	}
	s.mu.Unlock()

	res, err := s.dispatcher.Do(ctx, &azuretls.Request{
		Method:  http.MethodGet,
		Url:     imgUrl,
		TimeOut: httpclient.DOWNLOAD_TIMEOUT,
	})
	if err != nil {
		return "", fmt.Errorf("failed to download image %q: %w", imgUrl, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &httpclient.StatusError{Url: imgUrl, StatusCode: res.StatusCode}
	}

	ext := ""
	if urlObj, err := url.Parse(imgUrl); err == nil {
		ext = strings.ToLower(path.Ext(urlObj.Path))
	}
	if !slices.Contains(constants.ImgExts, ext) {
		// no (usable) ext in url path: use the response content type, then
		// sniff the contents
		if ext = util.GetExtFromType(res.Header.Get("Content-Type")); ext == "" {
			if kind, err := filetype.Match(res.Body); err == nil && kind != filetype.Unknown {
				ext = "." + kind.Extension
			} else {
				ext = ".jpg"
			}
		}
	}

	name := imageBasename(sequenceId, s.platform, number) + ext
	// a leftover file of a prior run must not be overwritten
	fullpath := helper.GetNewFilePath(dir, name)
	if err = atomic.WriteFile(fullpath, bytes.NewReader(res.Body)); err != nil {
		return "", fmt.Errorf("failed to save image %q: %w", imgUrl, err)
	}
	filename = filepath.Base(fullpath)
	log.Debugf("saved image %s => %s", imgUrl, filename)
	s.mu.Lock()
	s.cache[imgUrl] = filename
	s.mu.Unlock()
	return filename, nil
}
