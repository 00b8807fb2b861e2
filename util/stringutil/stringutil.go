package stringutil

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/htmlindex"
)

var consecutiveSpacesRegexp = regexp.MustCompile(`\s+`)

// Some detectors report charset names that htmlindex does not know.
var charsetAliases = map[string]string{
	"GB-18030": "gb18030",
}

// Clean normalizes whitespaces of str: trim, replace each consecutive
// whitespaces sequence (including "\r\n") with a single ascii space.
func Clean(str string) string {
	return strings.TrimSpace(consecutiveSpacesRegexp.ReplaceAllString(str, " "))
}

// CleanTitle is Clean plus removal of control & zero-width characters and
// trailing dots / spaces (which Windows rejects in filenames).
func CleanTitle(str string) string {
	str = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '​' || r == '‎' || r == '‏' || r == '\ufeff' {
			return -1
		}
		return r
	}, str)
	str = Clean(str)
	return strings.TrimRight(str, ". ")
}

// StringPrefixInBytes returns the longest prefix of str that is at most
// maxBytes bytes long, without splitting an UTF-8 rune in the middle.
func StringPrefixInBytes(str string, maxBytes int) string {
	if len(str) <= maxBytes {
		return str
	}
	bytes := 0
	for i, r := range str {
		bytes += utf8.RuneLen(r)
		if bytes > maxBytes {
			return str[:i]
		}
	}
	return str
}

// ContainsI reports whether substr is inside str, case-insensitively.
func ContainsI(str string, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}

// HasAnySuffix reports whether str ends with any one of suffixes, case-insensitively.
func HasAnySuffix(str string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// IsASCIIIndexBy8s32 reports whether s is pure ASCII, checking 8 bytes
// at a time. See https://github.com/dgrr/perf-tests .
func IsASCIIIndexBy8s32(s string) bool {
	for len(s) >= 8 {
		first32 := uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
		second32 := uint32(s[4]) | uint32(s[5])<<8 | uint32(s[6])<<16 | uint32(s[7])<<24
		if (first32|second32)&0x80808080 != 0 {
			return false
		}
		s = s[8:]
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// PrintStringInWidth prints str to output, truncated or padded to exactly
// width display cells (CJK aware).
func PrintStringInWidth(output io.Writer, str string, width int, padRight bool) (remain string) {
	strWidth := 0
	pstr := ""
	for _, char := range str {
		charWidth := runewidth.RuneWidth(char)
		if strWidth+charWidth > width {
			remain = str[len(pstr):]
			break
		}
		pstr += string(char)
		strWidth += charWidth
	}
	if padRight {
		pstr += strings.Repeat(" ", width-strWidth)
	} else {
		pstr = strings.Repeat(" ", width-strWidth) + pstr
	}
	fmt.Fprint(output, pstr)
	return
}

// DecodeText decodes data of charset encoding to UTF-8.
// If force is false, it errors out when the decoded result contains invalid
// (replaced) characters that the original data does not have.
func DecodeText(data []byte, charset string, force bool) ([]byte, error) {
	if name, ok := charsetAliases[charset]; ok {
		charset = name
	}
	encoding, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %s: %w", charset, err)
	}
	decoded, err := encoding.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	if !force && strings.ContainsRune(string(decoded), utf8.RuneError) &&
		!strings.ContainsRune(string(data), utf8.RuneError) {
		return nil, fmt.Errorf("data is not valid %s text", charset)
	}
	return decoded, nil
}
