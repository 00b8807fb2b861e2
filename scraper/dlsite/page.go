package dlsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/util/stringutil"
)

// Every candidate page url of the work failed.
var ErrNoAccessibleUrl = errors.New("no accessible work page url")

// Candidate urls of the work metadata page, in try order: the live work page,
// then the announce (upcoming / pre-release) page, each shape with the locale
// query first when a locale is requested.
func (ds *Scraper) pageUrls(workId string, locale string) (urls []string) {
	site := workSite(workId)
	for _, shape := range []string{"work", "announce"} {
		pageUrl := fmt.Sprintf("%s/%s/%s/=/product_id/%s.html", ds.baseUrl, site, shape, workId)
		if locale != "" {
			urls = append(urls, pageUrl+"?locale="+locale)
		}
		urls = append(urls, pageUrl)
	}
	return urls
}

// fetchPage tries the candidate page urls in order and parses the first one
// that responds. A single candidate failing (404, transport error) just
// advances the loop; only all of them failing is an error (ErrNoAccessibleUrl,
// carrying the last failure).
func (ds *Scraper) fetchPage(ctx context.Context, workId string, locale string) (
	doc *goquery.Document, pageUrl string, err error) {
	var lastErr error
	for _, candidateUrl := range ds.pageUrls(workId, locale) {
		res, err := ds.dispatcher.FetchUrl(ctx, candidateUrl, nil)
		if err != nil {
			log.Debugf("dlsite %s: %v", workId, err)
			lastErr = err
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decodeHtml(res.Body)))
		if err != nil {
			lastErr = err
			continue
		}
		return doc, candidateUrl, nil
	}
	return nil, "", fmt.Errorf("%w of %s (last error: %v)", ErrNoAccessibleUrl, workId, lastErr)
}

// Pages are utf-8 today. Be tolerant of legacy charsets anyway.
func decodeHtml(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	if result, err := chardet.NewHtmlDetector().DetectBest(data); err == nil && result.Charset != "" {
		if decoded, err := stringutil.DecodeText(data, result.Charset, false); err == nil {
			return decoded
		}
	}
	return data
}

// ensureAbsolute makes a page resource url absolute. Idempotent. Applied to
// every image url the pipeline touches, the site serves them in all 4 forms.
func ensureAbsolute(urlStr string) string {
	switch {
	case urlStr == "":
		return ""
	case strings.HasPrefix(urlStr, "http://"), strings.HasPrefix(urlStr, "https://"):
		return urlStr
	case strings.HasPrefix(urlStr, "//"):
		return "https:" + urlStr
	case strings.HasPrefix(urlStr, "/"):
		return BASE_URL + urlStr
	default:
		return BASE_URL + "/" + urlStr
	}
}
