package strutil

import (
	"strings"
	"unicode"
)

func DefaultIfEmpty(input string, defaultValue string) string {
	if input == "" {
		return defaultValue
	}

	return input
}

func EnsureSuffix(input string, suffix string) string {
	if strings.HasSuffix(input, suffix) {
		return input
	}

	return input + suffix
}

// SplitAndTrim splits the input on the separator, trims each item, and drops empty items.
func SplitAndTrim(input string, separator string) []string {
	results := []string{}

	for _, item := range strings.Split(input, separator) {
		trimmed := strings.TrimSpace(item)

		if trimmed == "" {
			continue
		}

		results = append(results, trimmed)
	}

	return results
}

// TitleCase upper cases the first letter of every word and lower cases the rest.
// A word starts after any character that is not a letter, so "user-acceptance" becomes "User-Acceptance".
func TitleCase(input string) string {
	var builder strings.Builder
	previousIsLetter := false

	for _, r := range input {
		if previousIsLetter {
			builder.WriteRune(unicode.ToLower(r))
		} else {
			builder.WriteRune(unicode.ToUpper(r))
		}

		previousIsLetter = unicode.IsLetter(r)
	}

	return builder.String()
}

// IsAffirmative returns true for the answers accepted by a y/N prompt.
func IsAffirmative(input string) bool {
	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}
