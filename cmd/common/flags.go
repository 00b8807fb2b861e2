package common

import (
	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/constants"
)

var GameSortFlag = &cmd.EnumFlag{
	Description: "Sort field of game",
	Options: [][2]string{
		{constants.NONE, ""},
		{"title", ""},
		{"developer", ""},
		{"added", "index (added) order"},
		{"played", "last played time"},
		{"playcount", ""},
	},
}

// asc|desc
var OrderFlag = &cmd.EnumFlag{
	Description: "Sort order",
	Options: [][2]string{
		{"asc", ""},
		{"desc", ""},
	},
}
