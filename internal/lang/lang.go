// Package lang resolves which proofreading language a check runs in. The
// request's explicit language field wins; otherwise the service falls back
// to header negotiation and a script-based guess over the text itself.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Spanish,
	language.French,
	language.German,
	language.Portuguese,
	language.Italian,
	language.Dutch,
	language.Indonesian,
	language.Russian,
	language.Hindi,
	language.Arabic,
	language.Japanese,
	language.Korean,
	language.SimplifiedChinese,
	language.Turkish,
	language.Vietnamese,
}

var matcher = language.NewMatcher(supported)

// Default is the language used when nothing else matches.
const Default = "en"

// Match maps an arbitrary BCP-47 string to the closest supported language
// code. Unparseable or unsupported input falls back to English.
func Match(bcp47 string) string {
	bcp47 = strings.TrimSpace(bcp47)
	if bcp47 == "" {
		return Default
	}
	tag, err := language.Parse(bcp47)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// FromAcceptLanguage negotiates against an Accept-Language header.
func FromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Supported reports whether code is a language this service proofs.
func Supported(code string) bool {
	for _, tag := range supported {
		base, _ := tag.Base()
		if base.String() == code {
			return true
		}
	}
	return false
}
