package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// MaxFilenameLength leaves room for a suffix and extension within the
// usual 255 byte limit.
const MaxFilenameLength = 200

// SanitizeFilename turns a page title into something usable as a file name.
// Keep titles are free text, so anything from path separators to line
// breaks can show up.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leading dots would hide the file
	filename = strings.TrimLeft(filename, ".")

	if len(filename) > MaxFilenameLength {
		filename = strings.TrimSpace(truncateUTF8(filename, MaxFilenameLength))
	}

	if filename == "" {
		filename = "Untitled"
	}
	return filename
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
