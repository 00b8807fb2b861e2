package dlsite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sagan/erolauncher/scraper"
)

// \b 不匹配 "_"
var WorkIdRegexp = regexp.MustCompile(`(?i)\b(?P<id>[RVB]J\d{6,8})(\b|_)`)

var workIdFullRegexp = regexp.MustCompile(`(?i)^[RVB]J\d{6,8}$`)

// ResolveWorkId scans input (a bare id, dir name, file path or url) for the
// first dlsite work id ("RJ01347095") and returns it upper-cased.
func ResolveWorkId(input string) (string, error) {
	if match := WorkIdRegexp.FindStringSubmatch(input); match != nil {
		return strings.ToUpper(match[WorkIdRegexp.SubexpIndex("id")]), nil
	}
	return "", fmt.Errorf("%w in %q", scraper.ErrNoIdentifier, input)
}

// IsWorkId reports whether s as a whole is a dlsite work id.
func IsWorkId(s string) bool {
	return workIdFullRegexp.MatchString(s)
}

// Site section that serves the work: RJ (doujin) => maniax, VJ (pro) => pro,
// BJ (BL, with GL redirected by the site itself to girls-pro) => bl-pro.
func workSite(workId string) string {
	switch {
	case strings.HasPrefix(workId, "V"):
		return "pro"
	case strings.HasPrefix(workId, "B"):
		return "bl-pro"
	default:
		return "maniax"
	}
}
