package schema

import (
	"fmt"

	"github.com/sagan/erolauncher/util"
)

// Game is the metadata record of a single game, persisted as a standalone
// json file inside the game dir. Field names are part of the record format,
// do NOT change them.
type Game struct {
	Id                 string   `json:"id"`
	Title              string   `json:"title"`
	Developer          string   `json:"developer,omitempty"`
	Genre              string   `json:"genre,omitempty"`
	Tags               Tags     `json:"tags,omitempty"`
	ReleaseDate        string   `json:"releaseDate,omitempty"` // "2006-01-02"
	AddedDate          string   `json:"addedDate,omitempty"`
	Platform           string   `json:"platform,omitempty"` // "dlsite" | "steam" | "itchio"
	DlsiteId           string   `json:"dlsiteId,omitempty"` // e.g. "RJ01347095"
	DlsiteGenres       []string `json:"dlsiteGenres,omitempty"`
	DlsiteVoiceActors  []string `json:"dlsiteVoiceActors,omitempty"`
	DlsiteAuthors      []string `json:"dlsiteAuthors,omitempty"`
	DlsiteScenario     []string `json:"dlsiteScenario,omitempty"`
	DlsiteIllustration []string `json:"dlsiteIllustration,omitempty"`
	AgeRating          string   `json:"ageRating,omitempty"`
	ProductFormat      string   `json:"productFormat,omitempty"`
	FileFormat         string   `json:"fileFormat,omitempty"`
	FileSize           string   `json:"fileSize,omitempty"`
	Language           string   `json:"language,omitempty"`
	UpdateInfo         string   `json:"updateInfo,omitempty"`
	Description        string   `json:"description,omitempty"`
	CoverImage         string   `json:"coverImage,omitempty"`   // relative to game dir, "/" seperated
	SampleImages       []string `json:"sampleImages,omitempty"` // same as CoverImage
	ExecutablePath     string   `json:"executablePath,omitempty"`
	Dir                string   `json:"dir,omitempty"` // game dir, relative to library root
}

// Return the platform work number of the game, e.g. "RJ01347095".
func (g *Game) GetNumber() string {
	return util.FirstNonZeroArg(g.DlsiteId, g.Tags.GetMeta("number"))
}

// Return suitable folder name
func (g *Game) GetDirname() (dirname string) {
	developer := util.CleanBasenameComponent(g.Developer)
	title := util.CleanBasenameComponent(g.Title)
	if number := g.GetNumber(); number != "" {
		dirname += fmt.Sprintf("[%s]", number)
	}
	if developer != "" {
		dirname += fmt.Sprintf("[%s]", developer)
	}
	if title != "" {
		dirname += title
	}
	return util.CleanBasename(dirname)
}
