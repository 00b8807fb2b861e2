package dlsite

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/httpclient"
	"github.com/sagan/erolauncher/scraper"
)

// A work page as served for a work that only the api knows the title of.
const e2ePageHtml = `<!DOCTYPE html>
<html><head><meta property="og:image" content="%s"></head><body>
<table id="work_outline"><tbody>
<tr><th>Genre</th><td><a href="#">R18</a><a href="#">Drama</a></td></tr>
<tr><th>Voice Actor</th><td><a href="#">Jane Doe</a></td></tr>
</tbody></table>
</body></html>`

var e2eJpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func newServerScraper(t *testing.T, handler http.Handler) (*Scraper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	d, err := httpclient.NewDispatcher(&httpclient.Options{
		Timeout:     time.Second * 5,
		MaxAttempts: 1,
	})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	ds := newTestScraper(t, &config.Config{})
	ds.dispatcher = d
	ds.images = scraper.NewImageSaver(d, DLSITE)
	ds.baseUrl = server.URL
	return ds, server
}

func TestPageUrls(t *testing.T) {
	ds := newTestScraper(t, nil)
	assert.Equal(t, []string{
		"https://www.dlsite.com/maniax/work/=/product_id/RJ240904.html",
		"https://www.dlsite.com/maniax/announce/=/product_id/RJ240904.html",
	}, ds.pageUrls("RJ240904", ""))
	assert.Equal(t, []string{
		"https://www.dlsite.com/pro/work/=/product_id/VJ014402.html?locale=en_US",
		"https://www.dlsite.com/pro/work/=/product_id/VJ014402.html",
		"https://www.dlsite.com/pro/announce/=/product_id/VJ014402.html?locale=en_US",
		"https://www.dlsite.com/pro/announce/=/product_id/VJ014402.html",
	}, ds.pageUrls("VJ014402", "en_US"))
	assert.Equal(t, []string{
		"https://www.dlsite.com/bl-pro/work/=/product_id/BJ123456.html",
		"https://www.dlsite.com/bl-pro/announce/=/product_id/BJ123456.html",
	}, ds.pageUrls("BJ123456", ""))
}

func TestMatch(t *testing.T) {
	ds := newTestScraper(t, nil)
	assert.True(t, ds.Match("RJ01347095"))
	assert.True(t, ds.Match("[rj240904] タイトル"))
	assert.False(t, ds.Match("no id in here"))
}

func TestFetchEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	ds, server := newServerScraper(t, mux)
	mux.HandleFunc("/maniax/product/info/ajax", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "RJ01347095", r.URL.Query().Get("product_id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"RJ01347095": {"work_name": "Example Title", "maker_name": "Example Circle",
			"work_image": "%s/img/RJ01347095_img_main.jpg", "regist_date": "2024-05-01 10:00"}}`, server.URL)
	})
	mux.HandleFunc("/maniax/work/=/product_id/RJ01347095.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, e2ePageHtml, server.URL+"/img/RJ01347095_img_main.jpg")
	})
	mux.HandleFunc("/img/RJ01347095_img_main.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(e2eJpeg)
	})

	saveDir := t.TempDir()
	game, err := ds.Fetch(context.Background(), "some/path/RJ01347095/readme.txt", &scraper.Options{
		SequenceId: 1,
		SaveDir:    saveDir,
		MaxSamples: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "00001_rj01347095", game.Id)
	assert.Equal(t, "Example Title", game.Title)
	assert.Equal(t, "Example Circle", game.Developer)
	assert.Equal(t, "Drama", game.Genre)
	assert.Equal(t, []string{"Jane Doe"}, game.DlsiteVoiceActors)
	assert.Equal(t, "RJ01347095", game.DlsiteId)
	assert.Equal(t, "2024-05-01", game.ReleaseDate)
	assert.NotContains(t, game.Tags, "R18")
	assert.Equal(t, "images/00001_dlsite_rj01347095.jpg", game.CoverImage)
	contents, err := os.ReadFile(filepath.Join(saveDir, "images", "00001_dlsite_rj01347095.jpg"))
	require.NoError(t, err)
	assert.Equal(t, e2eJpeg, contents)
}

func TestFetchPageAnnounceFallback(t *testing.T) {
	mux := http.NewServeMux()
	ds, server := newServerScraper(t, mux)
	mux.HandleFunc("/maniax/announce/=/product_id/RJ999888.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, e2ePageHtml, "")
	})

	doc, pageUrl, err := ds.fetchPage(context.Background(), "RJ999888", "")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, server.URL+"/maniax/announce/=/product_id/RJ999888.html", pageUrl,
		"the announce page is tried after the work page fails")
}

func TestFetchNotFound(t *testing.T) {
	mux := http.NewServeMux()
	ds, _ := newServerScraper(t, mux)
	mux.HandleFunc("/maniax/product/info/ajax", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{}`)
	})

	_, err := ds.Fetch(context.Background(), "RJ000001", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrNotFound)

	_, _, err = ds.fetchPage(context.Background(), "RJ000001", "")
	assert.ErrorIs(t, err, ErrNoAccessibleUrl)
}
