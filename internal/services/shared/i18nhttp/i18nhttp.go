// Package i18nhttp picks the message locale for an HTTP request.
package i18nhttp

import (
	"net/http"
	"strings"

	"github.com/louisbranch/twbb/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// Supported returns the catalog locales as tags, base locale first.
func Supported() []language.Tag {
	tags := []language.Tag{Default()}
	for _, locale := range catalog.Default().Locales() {
		if locale == catalog.BaseLocale {
			continue
		}
		if tag, err := language.Parse(locale); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Default returns the base locale tag.
func Default() language.Tag {
	return language.MustParse(catalog.BaseLocale)
}

// ResolveTag determines the best supported tag from fallback, the lang
// query parameter, then Accept-Language. An explicit fallback, such as a
// channel's configured locale, wins over the request headers.
func ResolveTag(r *http.Request, fallback string) language.Tag {
	supported := Supported()
	matcher := language.NewMatcher(supported)

	candidates := []string{strings.TrimSpace(fallback)}
	if r != nil {
		candidates = append(candidates, strings.TrimSpace(r.URL.Query().Get(LangParam)))
	}
	for _, value := range candidates {
		if value == "" {
			continue
		}
		if tag, err := language.Parse(value); err == nil {
			_, index, confidence := matcher.Match(tag)
			if confidence >= language.High {
				return supported[index]
			}
		}
	}

	if r != nil {
		if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
			if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
				_, index, confidence := matcher.Match(tags...)
				if confidence != language.No {
					return supported[index]
				}
			}
		}
	}
	return Default()
}

// Printer returns a message printer for the request.
func Printer(r *http.Request, fallback string) *message.Printer {
	return catalog.Printer(ResolveTag(r, fallback).String())
}
