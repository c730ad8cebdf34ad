package models

import "strings"

// Locale is a supported UI and content language
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"

	DefaultLocale = LocaleSpanish
)

// SupportedLocales lists the locales in display order
var SupportedLocales = []Locale{LocaleEnglish, LocaleSpanish}

// ParseLocale normalizes a locale string. The second return value is false
// when the value is not a supported locale.
func ParseLocale(s string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	// Accept region-qualified tags such as "es-MX"
	if i := strings.IndexAny(string(l), "-_"); i > 0 {
		l = l[:i]
	}
	for _, supported := range SupportedLocales {
		if l == supported {
			return l, true
		}
	}
	return "", false
}

// DisplayName returns the English name of the language, which is what the
// LLM prompt uses
func (l Locale) DisplayName() string {
	switch l {
	case LocaleEnglish:
		return "English"
	case LocaleSpanish:
		return "Spanish"
	default:
		return string(l)
	}
}

// LanguageOption is a locale as exposed by the catalog endpoint
type LanguageOption struct {
	ID   Locale `json:"id"`
	Name string `json:"name"`
}

// Languages returns the catalog of selectable languages
func Languages() []LanguageOption {
	return []LanguageOption{
		{ID: LocaleEnglish, Name: "English"},
		{ID: LocaleSpanish, Name: "Español (Spanish)"},
	}
}

// BibleVersion is a supported Bible translation tagged with its language
type BibleVersion struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language Locale `json:"language"`
}

var bibleVersions = []BibleVersion{
	{ID: "NIV", Name: "New International Version (NIV)", Language: LocaleEnglish},
	{ID: "ESV", Name: "English Standard Version (ESV)", Language: LocaleEnglish},
	{ID: "KJV", Name: "King James Version (KJV)", Language: LocaleEnglish},
	{ID: "NVI", Name: "Nueva Versión Internacional (NVI)", Language: LocaleSpanish},
	{ID: "RVR1960", Name: "Reina Valera 1960 (RVR1960)", Language: LocaleSpanish},
}

// BibleVersions returns every supported version
func BibleVersions() []BibleVersion {
	out := make([]BibleVersion, len(bibleVersions))
	copy(out, bibleVersions)
	return out
}

// BibleVersionsForLanguage returns only the versions tagged with the language
func BibleVersionsForLanguage(lang Locale) []BibleVersion {
	out := make([]BibleVersion, 0)
	for _, v := range bibleVersions {
		if v.Language == lang {
			out = append(out, v)
		}
	}
	return out
}

// FindBibleVersion looks a version up by id, case-insensitively
func FindBibleVersion(id string) (BibleVersion, bool) {
	id = strings.TrimSpace(id)
	for _, v := range bibleVersions {
		if strings.EqualFold(v.ID, id) {
			return v, true
		}
	}
	return BibleVersion{}, false
}

// BibleVersionMatchesLanguage reports whether id names a version of lang
func BibleVersionMatchesLanguage(id string, lang Locale) bool {
	v, ok := FindBibleVersion(id)
	return ok && v.Language == lang
}

// DefaultBibleVersion returns the first version for the language, or "" when
// the language has none
func DefaultBibleVersion(lang Locale) string {
	versions := BibleVersionsForLanguage(lang)
	if len(versions) == 0 {
		return ""
	}
	return versions[0].ID
}

// Religion is a selectable religion on the profile
type Religion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var religions = []Religion{
	{ID: "christianity", Name: "Christianity"},
	{ID: "judaism", Name: "Judaism"},
	{ID: "islam", Name: "Islam"},
	{ID: "hinduism", Name: "Hinduism"},
	{ID: "buddhism", Name: "Buddhism"},
	{ID: "spiritual_not_religious", Name: "Spiritual but not religious"},
	{ID: "agnostic", Name: "Agnostic"},
	{ID: "atheist", Name: "Atheist"},
	{ID: "other", Name: "Other"},
	{ID: "prefer_not_to_say", Name: "Prefer not to say"},
}

// Religions returns the religion catalog
func Religions() []Religion {
	out := make([]Religion, len(religions))
	copy(out, religions)
	return out
}

// IsKnownReligion reports whether id is in the catalog
func IsKnownReligion(id string) bool {
	for _, r := range religions {
		if r.ID == id {
			return true
		}
	}
	return false
}
