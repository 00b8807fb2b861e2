package main

import (
	"os"
	"runtime"
	_ "time/tzdata"

	"github.com/sagan/erolauncher/cmd"
	_ "github.com/sagan/erolauncher/cmd/all"
	_ "github.com/sagan/erolauncher/scraper/all"
)

func main() {
	if runtime.GOOS == "windows" {
		// https://github.com/golang/go/issues/43947
		os.Setenv("NoDefaultCurrentDirectoryInExePath", "1")
	}
	cmd.Execute()
}
