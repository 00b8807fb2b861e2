package dlsite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/scraper"
)

func newTestScraper(t *testing.T, cfg *config.Config) *Scraper {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	s, err := NewScraper(nil, cfg)
	require.NoError(t, err)
	return s.(*Scraper)
}

func TestSynthesizePrecedence(t *testing.T) {
	ds := newTestScraper(t, nil)
	api := &ApiWork{
		WorkName:   "Example Title",
		MakerName:  "Example Circle",
		RegistDate: "2024-05-01 10:00",
	}
	page := &PageFields{
		Scalars: map[string]string{},
		Lists: map[string][]string{
			FIELD_GENRE:       {"R18", "Drama"},
			FIELD_VOICE_ACTOR: {"Jane Doe"},
		},
	}
	game := ds.synthesize("RJ01347095", api, page, &scraper.Options{SequenceId: 1})
	assert.Equal(t, "00001_rj01347095", game.Id)
	assert.Equal(t, "Example Title", game.Title, "api fields fill in what the page did not provide")
	assert.Equal(t, "Example Circle", game.Developer)
	assert.Equal(t, "Drama", game.Genre)
	assert.Equal(t, []string{"Jane Doe"}, game.DlsiteVoiceActors)
	assert.Equal(t, "RJ01347095", game.DlsiteId)
	assert.Equal(t, DLSITE, game.Platform)
	assert.Equal(t, "2024-05-01", game.ReleaseDate)
	assert.NotContains(t, game.Tags, "R18")
	assert.Contains(t, game.Tags, "Drama")
}

func TestSynthesizePageWins(t *testing.T) {
	ds := newTestScraper(t, nil)
	api := &ApiWork{WorkName: "Api Title", MakerName: "Api Circle", AgeCategoryString: "adult"}
	page := &PageFields{
		Title: "Page Title",
		Maker: "Page Circle",
		Scalars: map[string]string{
			FIELD_RELEASE_DATE: "2024年05月01日",
			FIELD_AGE_RATING:   "18禁",
			FIELD_SERIES:       "魔法シリーズ",
			FIELD_UPDATE_DATE:  "2024年06月15日",
		},
		Lists: map[string][]string{},
	}
	game := ds.synthesize("RJ240904", api, page, &scraper.Options{})
	assert.Equal(t, "rj240904", game.Id)
	assert.Equal(t, "Page Title", game.Title)
	assert.Equal(t, "Page Circle", game.Developer)
	assert.Equal(t, "2024-05-01", game.ReleaseDate)
	assert.Equal(t, "18禁", game.AgeRating)
	assert.Equal(t, "魔法シリーズ", game.Tags.GetMeta("series"))
	assert.Equal(t, "2024年06月15日", game.UpdateInfo, "the update date backfills missing update info")
}

func TestSynthesizeEmptyInputs(t *testing.T) {
	ds := newTestScraper(t, nil)
	game := ds.synthesize("RJ01347095", nil, nil, &scraper.Options{SequenceId: 12})
	require.NotNil(t, game)
	assert.Equal(t, "00012_rj01347095", game.Id)
	assert.Equal(t, "RJ01347095", game.Title, "the work id is the title of last resort")
	assert.Equal(t, PRIMARY_GENRE_FALLBACK, game.Genre)
	assert.Equal(t, time.Now().Format("2006-01-02"), game.AddedDate)
	assert.Empty(t, game.Developer)
	assert.Empty(t, game.DlsiteVoiceActors)
}

func TestSynthesizeGenreFiltering(t *testing.T) {
	page := &PageFields{
		Lists: map[string][]string{
			FIELD_GENRE: {"R18", "Adventure", "Drama", "Windows", "Adventure"},
		},
	}
	ds := newTestScraper(t, nil)
	game := ds.synthesize("RJ240904", nil, page, &scraper.Options{})
	assert.Equal(t, "Adventure", game.Genre, "the first true genre is the primary genre")
	assert.Equal(t, []string{"Adventure", "Drama"}, game.DlsiteGenres)
	assert.NotContains(t, game.Tags, "R18")
	assert.NotContains(t, game.Tags, "Windows")

	// the builtin exclusion lists are extendable from config
	ds = newTestScraper(t, &config.Config{ExcludedGenres: []string{"Adventure"}, ExcludedTags: []string{"Adventure"}})
	game = ds.synthesize("RJ240904", nil, page, &scraper.Options{})
	assert.Equal(t, "Drama", game.Genre)
	assert.NotContains(t, game.Tags, "Adventure")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		values []string
		output string
	}{
		{[]string{"2024年05月01日"}, "2024-05-01"},
		{[]string{"2024年05月01日 15時"}, "2024-05-01"},
		{[]string{"May/01/2024"}, "2024-05-01"},
		{[]string{"2024-05-01 10:00"}, "2024-05-01"},
		{[]string{"2024年10月下旬 予定"}, ""},
		{[]string{""}, ""},
		{[]string{"2024年10月下旬 予定", "2024-05-01"}, "2024-05-01"},
		{nil, ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.output, parseDate(test.values...), "parseDate(%v)", test.values)
	}
}

func TestGenerateGameId(t *testing.T) {
	assert.Equal(t, "00012_rj01347095", generateGameId(12, "RJ01347095"))
	assert.Equal(t, "rj01347095", generateGameId(0, "RJ01347095"))
}
