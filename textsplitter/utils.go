package textsplitter

import (
	"regexp"
	"strings"
)

// splitKeepSeparator splits text on separator, keeping the separator at
// the start of each split after the first so that rejoining the splits
// reproduces the original text.
func splitKeepSeparator(text, separator string) []string {
	if separator == "" {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	parts := strings.Split(text, separator)
	var result []string
	for i, part := range parts {
		if i > 0 {
			part = separator + part
		}
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func splitBySep(sep string) func(string) []string {
	return func(text string) []string {
		return splitKeepSeparator(text, sep)
	}
}

// splitByRegex panics on an invalid pattern; all patterns used here are
// compile-time constants.
func splitByRegex(regexStr string) func(string) []string {
	re := regexp.MustCompile(regexStr)
	return func(text string) []string {
		return re.FindAllString(text, -1)
	}
}

func splitByChar() func(string) []string {
	return func(text string) []string {
		return strings.Split(text, "")
	}
}
