package resources

import "strings"

// Resource is one crisis contact shown alongside an intervention.
type Resource struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
	Hours  string `json:"hours,omitempty"`
	Locale string `json:"locale"`
}

// DefaultLocale is used when a caller supplies no locale.
const DefaultLocale = "en-US"

// international is returned when no locale-specific entry exists.
var international = []Resource{
	{Name: "Find a Helpline", URL: "https://findahelpline.com", Hours: "directory", Locale: "intl"},
	{Name: "Emergency services", Phone: "112", Hours: "24/7", Locale: "intl"},
}

var byLocale = map[string][]Resource{
	"en-US": {
		{Name: "988 Suicide & Crisis Lifeline", Phone: "988", Text: "988", URL: "https://988lifeline.org", Hours: "24/7"},
		{Name: "Crisis Text Line", Text: "HOME to 741741", URL: "https://www.crisistextline.org", Hours: "24/7"},
	},
	"en-CA": {
		{Name: "9-8-8 Suicide Crisis Helpline", Phone: "988", Text: "988", URL: "https://988.ca", Hours: "24/7"},
	},
	"en-GB": {
		{Name: "Samaritans", Phone: "116 123", URL: "https://www.samaritans.org", Hours: "24/7"},
		{Name: "Shout", Text: "SHOUT to 85258", URL: "https://giveusashout.org", Hours: "24/7"},
	},
	"en-IE": {
		{Name: "Samaritans Ireland", Phone: "116 123", URL: "https://www.samaritans.org/ireland", Hours: "24/7"},
	},
	"en-AU": {
		{Name: "Lifeline Australia", Phone: "13 11 14", Text: "0477 13 11 14", URL: "https://www.lifeline.org.au", Hours: "24/7"},
	},
	"en-NZ": {
		{Name: "Need to talk?", Phone: "1737", Text: "1737", URL: "https://1737.org.nz", Hours: "24/7"},
	},
	"fr-FR": {
		{Name: "3114 Numéro national de prévention du suicide", Phone: "3114", URL: "https://3114.fr", Hours: "24/7"},
	},
	"de-DE": {
		{Name: "TelefonSeelsorge", Phone: "0800 111 0 111", URL: "https://www.telefonseelsorge.de", Hours: "24/7"},
	},
	"es-ES": {
		{Name: "Línea 024", Phone: "024", URL: "https://www.sanidad.gob.es/linea024", Hours: "24/7"},
	},
}

// languageDefault picks a region when only a language is known.
var languageDefault = map[string]string{
	"en": "en-US",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
}

// Lookup resolves crisis resources for a BCP 47 locale tag: exact tag,
// then the language's default region, then international resources.
// The returned slice is a copy.
func Lookup(locale string) []Resource {
	tag := canonical(locale)
	if tag == "" {
		tag = DefaultLocale
	}

	if list, ok := byLocale[tag]; ok {
		return withLocale(list, tag)
	}
	lang, _, _ := strings.Cut(tag, "-")
	if region, ok := languageDefault[lang]; ok {
		return withLocale(byLocale[region], region)
	}
	return append([]Resource(nil), international...)
}

// Locales returns the tags with dedicated resources.
func Locales() []string {
	out := make([]string, 0, len(byLocale))
	for tag := range byLocale {
		out = append(out, tag)
	}
	return out
}

// canonical normalizes "en_gb" and "EN-gb" to "en-GB".
func canonical(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return ""
	}
	lang, region, found := strings.Cut(locale, "-")
	lang = strings.ToLower(lang)
	if !found {
		return lang
	}
	return lang + "-" + strings.ToUpper(region)
}

func withLocale(list []Resource, tag string) []Resource {
	out := make([]Resource, len(list))
	for i, r := range list {
		r.Locale = tag
		out[i] = r
	}
	return out
}
