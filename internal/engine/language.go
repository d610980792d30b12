package engine

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
)

// Summary languages.
const (
	LangIndonesian = "id"
	LangEnglish    = "en"
	LangAuto       = "auto"
)

// detectSampleRunes bounds the text handed to the detector.
const detectSampleRunes = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// NormalizeLanguage maps a language hint to "id", "en" or "auto".
// Regional tags ("id-ID", "en_GB") collapse to their base. Unknown or empty
// hints yield the configured default language.
func NormalizeLanguage(hint string) string {
	hint = strings.TrimSpace(strings.ToLower(hint))
	switch hint {
	case "":
		return DefaultLanguage()
	case LangAuto:
		return LangAuto
	}
	tag, err := language.Parse(strings.ReplaceAll(hint, "_", "-"))
	if err != nil {
		return DefaultLanguage()
	}
	base, _ := tag.Base()
	switch base.String() {
	case LangIndonesian, "in", "ms":
		return LangIndonesian
	case LangEnglish:
		return LangEnglish
	}
	return DefaultLanguage()
}

// DefaultLanguage returns the configured default summary language.
func DefaultLanguage() string {
	switch cfg.DefaultLanguage {
	case LangEnglish:
		return LangEnglish
	}
	return LangIndonesian
}

// DetectLanguage guesses whether text is Indonesian or English.
// Returns "" when the detector is not confident.
func DetectLanguage(text string) string {
	sample := TruncateRunes(strings.TrimSpace(text), detectSampleRunes, "")
	if sample == "" {
		return ""
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.Indonesian, lingua.English, lingua.Malay).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	switch lang {
	case lingua.Indonesian, lingua.Malay:
		return LangIndonesian
	case lingua.English:
		return LangEnglish
	}
	return ""
}

// ResolveLanguage turns a normalized hint into a concrete prompt language.
// "auto" uses detection on the transcript and falls back to the default.
func ResolveLanguage(hint, transcript string) string {
	lang := NormalizeLanguage(hint)
	if lang != LangAuto {
		return lang
	}
	if detected := DetectLanguage(transcript); detected != "" {
		return detected
	}
	return DefaultLanguage()
}
