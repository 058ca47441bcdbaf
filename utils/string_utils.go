package utils

import (
	"strings"
	"unicode"
)

// Title normalizes a person's name for display: runs of whitespace
// collapse to one space and each word is capitalized, including the parts
// after a hyphen or apostrophe ("kim-lee o'neil" becomes "Kim-Lee O'Neil").
func Title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(w)
	upper := true
	for i, r := range runes {
		if upper {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
		upper = r == '-' || r == '\''
	}
	return string(runes)
}
