package dlsite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	return doc
}

func TestExtractFieldsJa(t *testing.T) {
	doc := loadFixture(t, "work_ja.html")
	fields := extractFields(doc, "https://www.dlsite.com/maniax/work/=/product_id/RJ240904.html", "RJ240904")
	assert.Equal(t, "魔法の冒険", fields.Title)
	assert.Equal(t, "サンプルサークル", fields.Maker)
	assert.Equal(t, "https://img.dlsite.jp/modpub/images2/work/doujin/RJ241000/RJ240904_img_main.jpg",
		fields.CoverImage)
	assert.Equal(t, "2024年05月01日", fields.Scalars[FIELD_RELEASE_DATE])
	assert.Equal(t, "2024年06月15日", fields.Scalars[FIELD_UPDATE_DATE],
		"the update history link should be stripped from the cell")
	assert.Equal(t, "魔法シリーズ", fields.Scalars[FIELD_SERIES])
	assert.Equal(t, []string{"山田花子", "田中太郎"}, fields.Lists[FIELD_VOICE_ACTOR])
	assert.Equal(t, []string{"佐藤次郎"}, fields.Lists[FIELD_SCENARIO])
	assert.Equal(t, []string{"鈴木三郎", "高橋四郎"}, fields.Lists[FIELD_ILLUSTRATION],
		"linkless cells split on seperator punctuations")
	assert.Equal(t, "全年齢", fields.Scalars[FIELD_AGE_RATING])
	assert.Equal(t, "ロールプレイング", fields.Scalars[FIELD_PRODUCT_FORMAT],
		"the title attr is preferred over the abbreviated visible text")
	assert.Equal(t, "アプリケーション", fields.Scalars[FIELD_FILE_FORMAT])
	assert.Equal(t, "1.54GB", fields.Scalars[FIELD_FILE_SIZE])
	assert.Equal(t, "日本語", fields.Scalars[FIELD_LANGUAGE])
	assert.Equal(t, []string{"ファンタジー", "冒険", "RPG"}, fields.Lists[FIELD_GENRE])
	assert.Equal(t, []string{
		"https://img.dlsite.jp/modpub/images2/work/doujin/RJ241000/RJ240904_img_smp1.jpg",
		"https://img.dlsite.jp/modpub/images2/work/doujin/RJ241000/RJ240904_img_smp2.jpg",
	}, fields.SampleImages, "main image excluded from samples, duplicates removed")
	assert.Contains(t, fields.Description, "勇者アリスは魔王城へと旅立った")
	assert.Empty(t, fields.Scalars[FIELD_UPDATE_INFO])
}

func TestExtractFieldsEn(t *testing.T) {
	doc := loadFixture(t, "work_en.html")
	fields := extractFields(doc, "https://www.dlsite.com/maniax/work/=/product_id/RJ240904.html?locale=en_US", "RJ240904")
	assert.Equal(t, "Magical Adventure", fields.Title)
	assert.Equal(t, "Sample Circle", fields.Maker)
	assert.Equal(t, "https://img.dlsite.jp/modpub/images2/work/doujin/RJ241000/RJ240904_img_main.jpg",
		fields.CoverImage)
	assert.Equal(t, "May/01/2024", fields.Scalars[FIELD_RELEASE_DATE])
	assert.Equal(t, []string{"A", "B"}, fields.Lists[FIELD_VOICE_ACTOR])
	assert.Equal(t, "R-18", fields.Scalars[FIELD_AGE_RATING])
	assert.Equal(t, "Role-playing", fields.Scalars[FIELD_PRODUCT_FORMAT])
	assert.Equal(t, "1.54 GB", fields.Scalars[FIELD_FILE_SIZE])
	assert.Equal(t, []string{"Fantasy", "Drama"}, fields.Lists[FIELD_GENRE])
	assert.Contains(t, fields.Description, "Alice is the heroine",
		"the character introduction section is preferred")
	assert.NotContains(t, fields.Description, "demon lord")
}

func TestExtractFieldsAnnounce(t *testing.T) {
	doc := loadFixture(t, "announce_ja.html")
	fields := extractFields(doc, "https://www.dlsite.com/maniax/announce/=/product_id/RJ01099876.html", "RJ01099876")
	assert.Equal(t, "未来の約束", fields.Title)
	assert.Equal(t, "サンプルサークル", fields.Maker)
	assert.Equal(t, "https://img.dlsite.jp/modpub/images2/ana/doujin/RJ01100000/RJ01099876_ana_img_main.jpg",
		fields.CoverImage)
	assert.Equal(t, "2024年12月01日", fields.Scalars[FIELD_RELEASE_DATE])
	assert.Equal(t, "18禁", fields.Scalars[FIELD_AGE_RATING])
	assert.Equal(t, "ボイス・ASMR", fields.Scalars[FIELD_PRODUCT_FORMAT])
	assert.Equal(t, []string{"癒し", "ASMR"}, fields.Lists[FIELD_GENRE])
	assert.Empty(t, fields.Lists[FIELD_VOICE_ACTOR])
	assert.Empty(t, fields.Scalars[FIELD_FILE_SIZE])
	assert.Empty(t, fields.SampleImages)
}

func TestEnsureAbsolute(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"", ""},
		{"https://img.dlsite.jp/a.jpg", "https://img.dlsite.jp/a.jpg"},
		{"http://img.dlsite.jp/a.jpg", "http://img.dlsite.jp/a.jpg"},
		{"//img.dlsite.jp/a.jpg", "https://img.dlsite.jp/a.jpg"},
		{"/modpub/a.jpg", "https://www.dlsite.com/modpub/a.jpg"},
		{"modpub/a.jpg", "https://www.dlsite.com/modpub/a.jpg"},
	}
	for _, test := range tests {
		assert.Equal(t, test.output, ensureAbsolute(test.input))
		assert.Equal(t, test.output, ensureAbsolute(ensureAbsolute(test.input)), "ensureAbsolute is idempotent")
	}
}
