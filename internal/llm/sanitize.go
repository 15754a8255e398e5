package llm

import (
	"strings"
	"unicode"
)

const fence = "```"

// SanitizeResponse strips the wrapping models add around JSON despite being
// told not to: a leading "JSON:" label and code fence markers, with or without
// a language tag. Only the markers go; payload sharing a line with a fence is kept.
func SanitizeResponse(raw string) string {
	s := stripJSONLabel(strings.TrimSpace(raw))

	if strings.HasPrefix(s, fence) {
		s = dropLanguageTag(strings.TrimLeft(s, "`"))
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
	}

	// the label can also sit inside the fence
	return stripJSONLabel(s)
}

func stripJSONLabel(s string) string {
	if len(s) >= 5 && strings.EqualFold(s[:5], "json:") {
		return strings.TrimSpace(s[5:])
	}
	return s
}

// dropLanguageTag removes an info string such as "json" that directly follows
// an opening fence. A word followed by anything but whitespace, a closing
// fence or the start of a JSON value is left for the caller.
func dropLanguageTag(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '+' && r != '_'
	})
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return s
	}
	rest := s[end:]
	if rest == "" || unicode.IsSpace(rune(rest[0])) || rest[0] == '[' || rest[0] == '{' || strings.HasPrefix(rest, fence) {
		return rest
	}
	return s
}
