package platforms

// SourceLanguage is the language generation happens in before the optional
// translation step. Input language detection is out of scope.
const SourceLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"ja": "Japanese",
	"ko": "Korean",
}

// IsSupportedLanguage reports whether code is in the closed language set.
func IsSupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// LanguageName returns the English name for a supported language code.
func LanguageName(code string) string {
	return languageNames[code]
}

// SupportedLanguages returns the supported codes (unordered).
func SupportedLanguages() []string {
	out := make([]string, 0, len(languageNames))
	for code := range languageNames {
		out = append(out, code)
	}
	return out
}
