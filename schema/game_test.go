package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetNumber(t *testing.T) {
	game := &Game{DlsiteId: "RJ01347095"}
	assert.Equal(t, "RJ01347095", game.GetNumber())

	game = &Game{Platform: "steam", Tags: Tags{"rpg", "number:570940"}}
	assert.Equal(t, "570940", game.GetNumber())

	assert.Equal(t, "", (&Game{}).GetNumber())
}

func TestGetDirname(t *testing.T) {
	game := &Game{
		Id:        "00001_rj01347095",
		Title:     "サンプルゲーム",
		Developer: "ExampleSoft",
		DlsiteId:  "RJ01347095",
	}
	assert.Equal(t, "[RJ01347095][ExampleSoft]サンプルゲーム", game.GetDirname())

	// restricted chars are replaced with full width alternatives
	game = &Game{Title: "What?", Developer: "A/B", DlsiteId: "RJ111111"}
	assert.Equal(t, "[RJ111111][A／B]What？", game.GetDirname())

	assert.Equal(t, "", (&Game{}).GetDirname())
}

func TestTagsMeta(t *testing.T) {
	tags := Tags{"Fantasy", "series:ExampleSeries", "author:A", "author:B"}
	assert.Equal(t, "ExampleSeries", tags.GetMeta("series"))
	assert.Equal(t, "", tags.GetMeta("missing"))
	assert.Equal(t, []string{"A", "B"}, tags.GetMetaArray("author"))
}
