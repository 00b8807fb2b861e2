package dlsite

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/stringutil"
)

// Used as the singular genre when no true genre survives filtering.
const PRIMARY_GENRE_FALLBACK = "Other"

// The page genre region mixes in non-genre classification axes: age rating
// labels, platform names, product / file format names, language names. They
// are excluded before the remainder is treated as true genres. The literal
// words track the site's label wording and need upkeep when it changes.
var defaultExcludedGenres = []string{
	"R18", "R-18", "18+", "+18", "18禁", "R15", "R-15", "全年齢", "All ages",
	"Windows", "Mac", "macOS", "Linux", "Android", "iOS", "PC", "ブラウザ", "Browser",
	"動画", "音声", "ボイス", "ゲーム", "マンガ", "CG・イラスト", "ノベル", "音楽",
	"Voice", "Voiced", "Video", "Game", "Manga", "Novel", "Music",
	"ロールプレイング", "アクション", "シミュレーション",
	"Role-playing", "Action", "Simulation",
	"日本語", "英語", "中国語", "韓国語", "Japanese", "English", "Chinese", "Korean",
	"WAV", "MP3", "FLAC", "APK", "EXE", "HTML",
}

// The smaller counterpart applied to the final tag set; only the most common
// misclassified technical values.
var defaultExcludedTags = []string{
	"R18", "R-18", "18+", "+18", "18禁", "全年齢", "All ages",
	"Windows", "Mac", "Android",
	"日本語", "Japanese",
}

var dateFormats = []string{
	"2006年01月02日 15時",
	"2006年01月02日",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan/02/2006",
	"Jan 02, 2006",
	"January 2, 2006",
}

// synthesize merges the api record and the page fields into one game record.
// Both sources are optional: synthesis succeeds with partial or even empty
// inputs, each field falling back through page => api => placeholder, so that
// no field of the result is ever absent.
func (ds *Scraper) synthesize(workId string, api *ApiWork, page *PageFields, options *scraper.Options) *schema.Game {
	if api == nil {
		api = &ApiWork{}
	}
	if page == nil {
		page = &PageFields{}
	}
	genres := filterValues(page.Lists[FIELD_GENRE], ds.excludedGenres)
	tags := filterValues(page.Lists[FIELD_GENRE], ds.excludedTags)
	tags = util.UniqueSlice(append(slices.Clone(genres), tags...))
	if series := page.Scalars[FIELD_SERIES]; series != "" {
		tags = append(tags, "series:"+series)
	}
	genre := PRIMARY_GENRE_FALLBACK
	if len(genres) > 0 {
		genre = genres[0]
	}
	return &schema.Game{
		Id:                 generateGameId(options.SequenceId, workId),
		Title:              stringutil.CleanTitle(util.FirstNonZeroArg(page.Title, api.WorkName, workId)),
		Developer:          util.FirstNonZeroArg(page.Maker, api.MakerName),
		Genre:              genre,
		Tags:               tags,
		ReleaseDate:        parseDate(page.Scalars[FIELD_RELEASE_DATE], api.RegistDate),
		AddedDate:          time.Now().Format("2006-01-02"),
		Platform:           DLSITE,
		DlsiteId:           workId,
		DlsiteGenres:       genres,
		DlsiteVoiceActors:  util.UniqueSlice(page.Lists[FIELD_VOICE_ACTOR]),
		DlsiteAuthors:      util.UniqueSlice(page.Lists[FIELD_AUTHOR]),
		DlsiteScenario:     util.UniqueSlice(page.Lists[FIELD_SCENARIO]),
		DlsiteIllustration: util.UniqueSlice(page.Lists[FIELD_ILLUSTRATION]),
		AgeRating:          util.FirstNonZeroArg(page.Scalars[FIELD_AGE_RATING], api.AgeCategoryString),
		ProductFormat:      page.Scalars[FIELD_PRODUCT_FORMAT],
		FileFormat:         page.Scalars[FIELD_FILE_FORMAT],
		FileSize:           page.Scalars[FIELD_FILE_SIZE],
		Language:           page.Scalars[FIELD_LANGUAGE],
		UpdateInfo:         util.FirstNonZeroArg(page.Scalars[FIELD_UPDATE_INFO], page.Scalars[FIELD_UPDATE_DATE]),
		Description:        page.Description,
	}
}

func filterValues(values []string, excluded []string) []string {
	return util.FilterSlice(util.UniqueSlice(values), func(value string) bool {
		return !slices.Contains(excluded, value)
	})
}

// parseDate normalizes the first parseable value to "2006-01-02". Values that
// match no known format (e.g. the announce page's "2024年10月下旬 予定") yield "".
func parseDate(values ...string) string {
	for _, value := range values {
		value = stringutil.Clean(value)
		if value == "" {
			continue
		}
		for _, format := range dateFormats {
			if t, err := time.Parse(format, value); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}

// Game id: zero-padded sequence prefix + lower-cased work id, e.g.
// "00012_rj01347095". Without a sequence id the bare lower-cased work id is
// used. The platform stubs follow the same convention.
func generateGameId(sequenceId int, workId string) string {
	if sequenceId > 0 {
		return fmt.Sprintf("%05d_%s", sequenceId, strings.ToLower(workId))
	}
	return strings.ToLower(workId)
}
