package dlsite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/scraper"
)

func TestResolveWorkId(t *testing.T) {
	tests := []struct {
		input  string
		workId string // "" : expect an ErrNoIdentifier error
	}{
		{"RJ01347095", "RJ01347095"},
		{"some/path/RJ01347095/readme.txt", "RJ01347095"},
		{"rj240904", "RJ240904"},
		{"[VJ014402] タイトル", "VJ014402"},
		{"BJ123456_v2", "BJ123456"},
		{"https://www.dlsite.com/maniax/work/=/product_id/RJ240904.html", "RJ240904"},
		{"[RJ123456][サークル] 作品名 (RJ654321)", "RJ123456"},
		{"RJ12345", ""},        // too few digits
		{"RJ123456789", ""},    // too many digits
		{"xRJ123456", ""},      // no word boundary before the id
		{"no id in here", ""},
		{"", ""},
	}
	for _, test := range tests {
		workId, err := ResolveWorkId(test.input)
		if test.workId == "" {
			require.Error(t, err, "input %q", test.input)
			assert.ErrorIs(t, err, scraper.ErrNoIdentifier)
			assert.Empty(t, workId)
		} else {
			require.NoError(t, err, "input %q", test.input)
			assert.Equal(t, test.workId, workId)
		}
	}
}

func TestIsWorkId(t *testing.T) {
	assert.True(t, IsWorkId("RJ01347095"))
	assert.True(t, IsWorkId("rj240904"))
	assert.True(t, IsWorkId("VJ014402"))
	assert.False(t, IsWorkId("RJ12345"))
	assert.False(t, IsWorkId(" RJ240904"))
	assert.False(t, IsWorkId("[RJ240904]"))
	assert.False(t, IsWorkId("steam:12345"))
}

func TestWorkSite(t *testing.T) {
	assert.Equal(t, "maniax", workSite("RJ240904"))
	assert.Equal(t, "pro", workSite("VJ014402"))
	assert.Equal(t, "bl-pro", workSite("BJ123456"))
}
