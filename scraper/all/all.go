package all

import (
	_ "github.com/sagan/erolauncher/scraper/dlsite"
	_ "github.com/sagan/erolauncher/scraper/itchio"
	_ "github.com/sagan/erolauncher/scraper/steam"
)
