package dlsite

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/stringutil"
)

// Canonical work outline fields. Keys of PageFields.Scalars / Lists.
const (
	FIELD_RELEASE_DATE   = "release_date"
	FIELD_UPDATE_DATE    = "update_date"
	FIELD_SERIES         = "series"
	FIELD_AGE_RATING     = "age_rating"
	FIELD_PRODUCT_FORMAT = "product_format"
	FIELD_FILE_FORMAT    = "file_format"
	FIELD_FILE_SIZE      = "file_size"
	FIELD_LANGUAGE       = "language"
	FIELD_UPDATE_INFO    = "update_info"
	FIELD_VOICE_ACTOR    = "voice_actor"
	FIELD_AUTHOR         = "author"
	FIELD_SCENARIO       = "scenario"
	FIELD_ILLUSTRATION   = "illustration"
	FIELD_GENRE          = "genre"
)

// Skip description candidates shorter than this (placeholder nodes).
const MIN_DESCRIPTION_LENGTH = 50

//go:embed fieldmap.yaml
var fieldmapYaml []byte

type fieldMapEntry struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"` // "scalar" | "format" | "list"
	Labels []string `yaml:"labels"`
}

// header label => field, built from fieldmap.yaml.
var headerFields = map[string]*fieldMapEntry{}

func init() {
	var entries []*fieldMapEntry
	if err := yaml.Unmarshal(fieldmapYaml, &entries); err != nil {
		panic(fmt.Sprintf("invalid fieldmap.yaml: %v", err))
	}
	for _, entry := range entries {
		for _, label := range entry.Labels {
			headerFields[label] = entry
		}
	}
}

// PageFields is everything extracted from one work metadata page.
// A list-valued field is always a slice, never a bare string.
type PageFields struct {
	Url          string // the page url that was actually fetched
	Title        string
	Maker        string
	CoverImage   string // absolute url
	Description  string
	SampleImages []string            // absolute urls, cover excluded, deduplicated
	Scalars      map[string]string   // canonical scalar / format field => value
	Lists        map[string][]string // canonical list field => values
}

var listSeperatorRegexp = regexp.MustCompile(`\s*[,，、/]\s*`)

// The description area of a work page. The dedicated character introduction
// section is preferred; the rest are layout variants, tried in order, first
// one with enough text wins.
var characterIntroSelectors = []string{
	`.work_parts_container:has(.work_parts_heading:contains("キャラクター紹介"))`,
	`.work_parts_container:has(.work_parts_heading:contains("Character"))`,
}
var descriptionSelectors = []string{
	`div[itemprop="description"] .work_parts_container`,
	`.work_parts_container`,
	`.work_article.work_story`,
	`.summary`,
}

// Cover image, first match wins. og:image goes first: on translated work
// pages the _img_main file carries the primary work's id, not this one's, and
// og:image is the only reliable pointer there.
var coverSelectors = []string{
	`meta[property="og:image"]`,
	`source[srcset$="/{{id}}_img_main.webp"]`,
	`source[srcset$="/{{id}}_img_main.png"]`,
	`source[srcset$="/{{id}}_img_main.jpg"]`,
	`div[data-src$="/{{id}}_img_main.jpg"]`,
	`.product-slider-data div[data-src]`,
}
var coverSrcAttrs = []string{"content", "srcset", "data-src", "src"}

const sampleSelector = `.product-slider-data div[data-src], .product-slider-data img[src]`

// extractFields parses the work page document into PageFields. Unrecognized
// outline rows are ignored: the table schema is not stable across site
// revisions and extraction must stay tolerant of missing or additional rows.
func extractFields(doc *goquery.Document, pageUrl string, workId string) *PageFields {
	fields := &PageFields{
		Url:     pageUrl,
		Scalars: map[string]string{},
		Lists:   map[string][]string{},
	}
	fields.Title = stringutil.Clean(doc.Find("#work_name").First().Text())
	fields.Maker = stringutil.Clean(doc.Find(".maker_name").First().Text())

	doc.Find("#work_outline tr").Each(func(i int, s *goquery.Selection) {
		header := stringutil.Clean(s.Find("th").First().Text())
		entry := headerFields[header]
		if entry == nil {
			return
		}
		td := s.Find("td").First()
		switch entry.Kind {
		case "list":
			fields.Lists[entry.Name] = cellList(td)
		case "format":
			fields.Scalars[entry.Name] = cellFormat(td)
		default:
			if entry.Name == FIELD_UPDATE_DATE {
				// the cell appends an update history link after the date
				fields.Scalars[entry.Name] = stringutil.Clean(td.Contents().Not("a").Text())
			} else {
				fields.Scalars[entry.Name] = stringutil.Clean(td.Text())
			}
		}
	})

	fields.CoverImage = extractCover(doc, workId)
	fields.Description = extractDescription(doc)
	doc.Find(sampleSelector).Each(func(i int, s *goquery.Selection) {
		imgUrl := util.FirstNonZeroArg(s.AttrOr("data-src", ""), s.AttrOr("src", ""))
		// the slider repeats the main cover, keep samples distinct from it
		if imgUrl == "" || strings.Contains(imgUrl, "_img_main") {
			return
		}
		fields.SampleImages = append(fields.SampleImages, ensureAbsolute(imgUrl))
	})
	fields.SampleImages = util.UniqueSlice(fields.SampleImages)
	return fields
}

// Values of a list cell: the text of every link, or the raw cell text split
// on seperator punctuations when the cell has no link.
func cellList(td *goquery.Selection) (values []string) {
	td.Find("a").Each(func(i int, s *goquery.Selection) {
		if value := stringutil.Clean(s.Text()); value != "" {
			values = append(values, value)
		}
	})
	if values == nil {
		values = util.OmitemptySlice(util.Map(listSeperatorRegexp.Split(stringutil.Clean(td.Text()), -1),
			stringutil.Clean))
	}
	return values
}

// Value of a format-like cell (product format / file format / age rating /
// language): the title attr of the type icons is the canonical full name, the
// visible text may be abbreviated. Prefer it, then link text, then cell text.
func cellFormat(td *goquery.Selection) string {
	var values []string
	td.Find("[title]").Each(func(i int, s *goquery.Selection) {
		if value := stringutil.Clean(s.AttrOr("title", "")); value != "" {
			values = append(values, value)
		}
	})
	if values == nil {
		td.Find("a").Each(func(i int, s *goquery.Selection) {
			if value := stringutil.Clean(s.Text()); value != "" {
				values = append(values, value)
			}
		})
	}
	if values == nil {
		return stringutil.Clean(td.Text())
	}
	return strings.Join(util.UniqueSlice(values), " / ")
}

func extractCover(doc *goquery.Document, workId string) string {
	for _, selector := range coverSelectors {
		selector = strings.ReplaceAll(selector, "{{id}}", workId)
		s := doc.Find(selector).First()
		if s.Length() == 0 {
			continue
		}
		for _, attr := range coverSrcAttrs {
			value := strings.TrimSpace(s.AttrOr(attr, ""))
			if value == "" {
				continue
			}
			// srcset may carry "url 1x, url2 2x" candidates
			if fields := strings.Fields(strings.SplitN(value, ",", 2)[0]); len(fields) > 0 {
				return ensureAbsolute(fields[0])
			}
		}
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	for _, selector := range characterIntroSelectors {
		if text := util.DomSelectionText(doc.Find(selector)); text != "" {
			return text
		}
	}
	for _, selector := range descriptionSelectors {
		if text := util.DomSelectionText(doc.Find(selector)); utf8.RuneCountInString(text) > MIN_DESCRIPTION_LENGTH {
			return text
		}
	}
	return ""
}
