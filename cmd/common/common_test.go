package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
)

func sortTestEntries() []*schema.LibraryEntry {
	return []*schema.LibraryEntry{
		{ID: 1, Title: "Beta", Developer: "Zoo", LastPlayed: 300, PlayCount: 2},
		{ID: 2, Title: "Alpha", Developer: "Ark", LastPlayed: 100, PlayCount: 9},
		{ID: 3, Title: "Gamma", Developer: "Mid", LastPlayed: 200, PlayCount: 5},
	}
}

func titles(entries []*schema.LibraryEntry) (names []string) {
	for _, entry := range entries {
		names = append(names, entry.Title)
	}
	return
}

func TestSortGames(t *testing.T) {
	entries := sortTestEntries()
	SortGames(entries, "title", "asc")
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, titles(entries))

	SortGames(entries, "title", "desc")
	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, titles(entries))

	SortGames(entries, "played", "desc")
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, titles(entries))

	SortGames(entries, "playcount", "asc")
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, titles(entries))

	SortGames(entries, "added", "asc")
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, titles(entries))
}

func TestSortGamesNone(t *testing.T) {
	entries := sortTestEntries()
	SortGames(entries, constants.NONE, "asc")
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, titles(entries))
}
