package schema

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/stringutil"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const NAME_WIDTH = 30

// Number, Platform, Genre, Note
const FORMAT = "  %-12s  %-8s  %-14s  %s\n"

// LibraryEntry is the sqlite index row of a game. The authoritative record is
// the json file inside the game dir; the index exists for fast list / search
// and for issuing record sequence ids.
// Do NOT embed gorm.Model as we need to set json tag
type LibraryEntry struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	GameId     string    `gorm:"index" json:"game_id"` // Game.Id
	Number     string    `gorm:"index" json:"number"`  // platform work id, e.g. "RJ01347095"
	Platform   string    `json:"platform"`
	Title      string    `json:"title"`
	Developer  string    `json:"developer"`
	Genre      string    `json:"genre"`
	Dir        string    `gorm:"index" json:"dir"` // game dir, relative to library root
	LastPlayed int64     `json:"last_played"`      // unix timestamp. 0: never
	PlayCount  int       `json:"play_count"`
	Tags       Tags      `gorm:"type:string" json:"tags"`
}

func PrintLibraryEntries(output io.Writer, title string, entries []*LibraryEntry) {
	fmt.Fprintf(output, "%s (%d):\n", title, len(entries))
	fmt.Fprintf(output, "%-*s", NAME_WIDTH, "Title")
	fmt.Fprintf(output, FORMAT, "Number", "Platform", "Genre", "Note")
	for _, entry := range entries {
		var notes []string
		notes = append(notes, entry.Dir)
		if entry.LastPlayed > 0 {
			notes = append(notes, fmt.Sprintf("played:%d@%s", entry.PlayCount, util.FormatTime(entry.LastPlayed)))
		}
		if series := entry.Tags.GetMeta("series"); series != "" {
			notes = append(notes, "series:"+series)
		}
		stringutil.PrintStringInWidth(output, entry.Title, NAME_WIDTH, true)
		fmt.Fprintf(output, FORMAT, entry.Number, entry.Platform, entry.Genre, strings.Join(notes, " ; "))
	}
}

func Init(dbfile string, verboseLevel int) (db *gorm.DB, err error) {
	var logLevel logger.LogLevel
	switch {
	case verboseLevel >= 3:
		logLevel = logger.Info
	case verboseLevel >= 2:
		logLevel = logger.Warn
	default:
		logLevel = logger.Silent
	}
	db, err = gorm.Open(sqlite.Open(dbfile), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return
	}
	err = db.AutoMigrate(&LibraryEntry{})
	return
}
