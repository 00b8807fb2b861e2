package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
)

func newTestServer(t *testing.T) (*httptest.Server, *library.Library) {
	t.Helper()
	db, err := schema.Init(filepath.Join(t.TempDir(), "data.db"), 0)
	require.NoError(t, err)
	testLib, err := library.Open(t.TempDir(), db)
	require.NoError(t, err)
	lib = testLib
	factory = scraper.NewFactory(nil, &config.Config{})
	controller = nil
	config.Data = &config.Config{}
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)
	return server, testLib
}

func getJson(t *testing.T, url string) *Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	response := &Response{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(response))
	return response
}

func TestEndpoints(t *testing.T) {
	server, testLib := newTestServer(t)
	require.NoError(t, testLib.Save(&schema.Game{
		Id:       "00001_rj111111",
		Title:    "A Game",
		Platform: "dlsite",
		DlsiteId: "RJ111111",
		Dir:      "[RJ111111]A Game",
	}))

	response := getJson(t, server.URL+"/api/basic")
	require.True(t, response.Success)
	data := response.Data.(map[string]any)
	assert.EqualValues(t, 1, data["games"])
	assert.Equal(t, "disconnected", data["vpn"])

	response = getJson(t, server.URL+"/api/games")
	require.True(t, response.Success)
	assert.Len(t, response.Data.([]any), 1)

	response = getJson(t, server.URL+"/api/game?id=RJ111111")
	require.True(t, response.Success)
	game := response.Data.(map[string]any)["game"].(map[string]any)
	assert.Equal(t, "A Game", game["title"])

	response = getJson(t, server.URL+"/api/search?query=a+game")
	require.True(t, response.Success)
	assert.Len(t, response.Data.([]any), 1)

	response = getJson(t, server.URL+"/api/game?id=RJ999999")
	assert.False(t, response.Success)
	assert.Contains(t, response.Message, "does not exist")

	response = getJson(t, server.URL+"/api/vpn")
	assert.False(t, response.Success)
	assert.Contains(t, response.Message, "not configured")
}

func TestToken(t *testing.T) {
	server, _ := newTestServer(t)
	config.Data.Token = "secret"

	res, err := http.Get(server.URL + "/api/basic")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, 403, res.StatusCode)

	response := getJson(t, server.URL+"/api/basic?token=secret")
	assert.True(t, response.Success)
}

func TestUnknownEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	res, err := http.Get(server.URL + "/api/nosuch")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, 404, res.StatusCode)
}
