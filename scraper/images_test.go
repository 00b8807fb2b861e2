package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/httpclient"
)

var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d}

func newTestImageSaver(t *testing.T) *ImageSaver {
	t.Helper()
	d, err := httpclient.NewDispatcher(&httpclient.Options{
		Timeout:     time.Second * 5,
		MaxAttempts: 1,
	})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return NewImageSaver(d, "dlsite")
}

func TestImageBasename(t *testing.T) {
	tests := []struct {
		sequenceId int
		platform   string
		number     string
		basename   string
	}{
		{1, "dlsite", "RJ01347095", "00001_dlsite_rj01347095"},
		{0, "dlsite", "RJ01347095", "00001_dlsite_rj01347095"},
		{291, "dlsite", "RJ123456", "00123_dlsite_rj123456"},
		{2, "steam", "12345", "00002_steam_12345"},
	}
	for _, test := range tests {
		assert.Equal(t, test.basename, imageBasename(test.sequenceId, test.platform, test.number))
	}
}

func TestImageSaverSave(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(jpegHeader)
	}))
	defer server.Close()

	saver := newTestImageSaver(t)
	dir := t.TempDir()

	filename, err := saver.Save(context.Background(), server.URL+"/img/RJ01347095_img_main.jpg",
		dir, "RJ01347095", 1)
	require.NoError(t, err)
	assert.Equal(t, "00001_dlsite_rj01347095.jpg", filename)
	contents, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, contents)

	// same url again: served from cache, no new request
	filename2, err := saver.Save(context.Background(), server.URL+"/img/RJ01347095_img_main.jpg",
		dir, "RJ01347095", 1)
	require.NoError(t, err)
	assert.Equal(t, filename, filename2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
}

func TestImageSaverEmptyUrl(t *testing.T) {
	saver := newTestImageSaver(t)
	filename, err := saver.Save(context.Background(), "", t.TempDir(), "RJ01347095", 1)
	require.NoError(t, err)
	assert.Empty(t, filename)
}

func TestImageSaverSniffsExt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/typed" {
			w.Header().Set("Content-Type", "image/png")
		} else {
			w.Header().Set("Content-Type", "unknown/unknown")
		}
		w.Write(pngHeader)
	}))
	defer server.Close()

	saver := newTestImageSaver(t)

	// no ext in the url path: the response content type decides
	filename, err := saver.Save(context.Background(), server.URL+"/typed", t.TempDir(), "RJ01347095", 2)
	require.NoError(t, err)
	assert.Equal(t, "00002_dlsite_rj01347095.png", filename)

	// unusable content type: the contents are sniffed
	filename, err = saver.Save(context.Background(), server.URL+"/resize/sample", t.TempDir(), "RJ01347095", 2)
	require.NoError(t, err)
	assert.Equal(t, "00002_dlsite_rj01347095.png", filename)
}

func TestImageSaverKeepsExistingFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegHeader)
	}))
	defer server.Close()

	saver := newTestImageSaver(t)
	dir := t.TempDir()
	existing := filepath.Join(dir, "00001_dlsite_rj01347095.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0600))

	filename, err := saver.Save(context.Background(), server.URL+"/a.jpg", dir, "RJ01347095", 1)
	require.NoError(t, err)
	assert.Equal(t, "00001_dlsite_rj01347095.1.jpg", filename)
	contents, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), contents, "existing file must not be overwritten")
}

func TestImageSaverStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	saver := newTestImageSaver(t)
	_, err := saver.Save(context.Background(), server.URL+"/missing.jpg", t.TempDir(), "RJ01347095", 1)
	require.Error(t, err)
	assert.True(t, httpclient.IsStatus(err, http.StatusNotFound))
}
