package itchio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/scraper"
)

func TestResolveWork(t *testing.T) {
	tests := []struct {
		input  string
		author string
		slug   string
	}{
		{"https://anna-anthropy.itch.io/queers-in-love-at-the-end-of-the-world",
			"anna-anthropy", "queers-in-love-at-the-end-of-the-world"},
		{"Some-Author.itch.io/My-Game", "some-author", "my-game"},
		{"https://www.itch.io/some-page", "", ""},
		{"https://itch.io/jam/some-jam", "", ""},
		{"RJ123456", "", ""},
		{"", "", ""},
	}
	for _, test := range tests {
		author, slug, err := ResolveWork(test.input)
		if test.author == "" {
			assert.ErrorIs(t, err, scraper.ErrNoIdentifier, "input=%q", test.input)
		} else {
			assert.NoError(t, err, "input=%q", test.input)
			assert.Equal(t, test.author, author, "input=%q", test.input)
			assert.Equal(t, test.slug, slug, "input=%q", test.input)
		}
	}
}

func TestFetch(t *testing.T) {
	is, err := NewScraper(nil, &config.Config{})
	require.NoError(t, err)
	assert.True(t, is.Match("https://foo.itch.io/bar"))
	assert.False(t, is.Match("https://store.steampowered.com/app/620"))

	game, err := is.Fetch(context.Background(), "https://foo.itch.io/bar", &scraper.Options{SequenceId: 7})
	require.NoError(t, err)
	assert.Equal(t, "00007_itchio_foo_bar", game.Id)
	assert.Equal(t, ITCHIO, game.Platform)
	assert.Equal(t, "bar", game.Title)
	assert.Equal(t, "foo", game.Developer)
	assert.NotEmpty(t, game.Description)
}
