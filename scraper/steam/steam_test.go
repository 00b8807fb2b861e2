package steam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/scraper"
)

func TestResolveAppId(t *testing.T) {
	tests := []struct {
		input string
		appId string
	}{
		{"https://store.steampowered.com/app/1091500/Cyberpunk_2077/", "1091500"},
		{"store.steampowered.com/app/400", "400"},
		{"steam:620", "620"},
		{"620", "620"},
		{" 620 ", "620"},
		{"RJ123456", ""},
		{"https://example.com/app/620", ""},
		{"", ""},
	}
	for _, test := range tests {
		appId, err := ResolveAppId(test.input)
		if test.appId == "" {
			assert.ErrorIs(t, err, scraper.ErrNoIdentifier, "input=%q", test.input)
		} else {
			assert.NoError(t, err, "input=%q", test.input)
			assert.Equal(t, test.appId, appId, "input=%q", test.input)
		}
	}
}

func TestFetch(t *testing.T) {
	ss, err := NewScraper(nil, &config.Config{})
	require.NoError(t, err)
	assert.True(t, ss.Match("steam:620"))
	assert.False(t, ss.Match("some-game-dir"))

	game, err := ss.Fetch(context.Background(), "https://store.steampowered.com/app/620/Portal_2/",
		&scraper.Options{SequenceId: 3})
	require.NoError(t, err)
	assert.Equal(t, "00003_steam_620", game.Id)
	assert.Equal(t, STEAM, game.Platform)
	assert.Equal(t, "620", game.GetNumber())
	assert.NotEmpty(t, game.Title)
	assert.NotEmpty(t, game.Description)

	game, err = ss.Fetch(context.Background(), "620", nil)
	require.NoError(t, err)
	assert.Equal(t, "steam_620", game.Id)
}
