package transcription

import "strings"

var supportedLanguages = map[string]string{
	"vi": "Tiếng Việt",
	"en": "English",
	"fr": "Français",
	"de": "Deutsch",
	"es": "Español",
	"it": "Italiano",
	"pt": "Português",
	"ru": "Русский",
	"ja": "日本語",
	"ko": "한국어",
	"zh": "中文",
	"ar": "العربية",
	"hi": "हिन्दी",
	"th": "ไทย",
	"tr": "Türkçe",
	"pl": "Polski",
	"nl": "Nederlands",
	"sv": "Svenska",
	"da": "Dansk",
	"no": "Norsk",
}

// SupportedLanguages returns a copy of the advertised language table.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for code, name := range supportedLanguages {
		out[code] = name
	}
	return out
}

// NormalizeLanguage trims and lowercases a language hint. Backends accept
// codes outside the advertised table, so unknown codes pass through.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "auto" {
		return ""
	}
	return lang
}
