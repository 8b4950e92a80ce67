package i18n

import (
	"regexp"
	"strings"
)

// devanagariPattern matches any rune in the Devanagari Unicode block.
var devanagariPattern = regexp.MustCompile(`[\x{0900}-\x{097F}]`)

// hinglishPatterns match common Hindi words transliterated into Latin
// script. Any hit classifies the text as Hindi.
var hinglishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(namaste|namaskar|dhanyavaad|shukriya)\b`),
	regexp.MustCompile(`(?i)\b(kya|kaise|kaun|kahan|kyun|aap|tum|mein|hai|hain|tha|the|gaya|gaye)\b`),
	regexp.MustCompile(`(?i)\b(nahi|haan|accha|theek)\b`),
}

// DetectLanguage classifies text as "hi" when it contains Devanagari script
// or common Hinglish tokens, defaulting to "en" otherwise.
func DetectLanguage(text string) string {
	if devanagariPattern.MatchString(text) {
		return LanguageHindi
	}
	for _, pattern := range hinglishPatterns {
		if pattern.MatchString(text) {
			return LanguageHindi
		}
	}
	return LanguageEnglish
}

// Supported reports whether the language code has dedicated templates.
func Supported(language string) bool {
	for _, code := range SupportedLanguages {
		if code == language {
			return true
		}
	}
	return false
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(haystack, strings.ToLower(needle))
}
