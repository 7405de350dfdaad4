package middleware

import (
	"context"
	"net/http"
	"strings"

	"correctnow/internal/lang"
)

type languageContextKey struct{}
type countryContextKey struct{}

var (
	LanguageKey = languageContextKey{}
	CountryKey  = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Language resolves a default proofreading language for the request from
// explicit headers, Accept-Language negotiation, and a geo hint, in that
// order. The request body's language field still overrides this default in
// the handler.
func Language(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := detectLanguage(r, lookup)
			ctx := context.WithValue(r.Context(), LanguageKey, code)
			if country := resolveCountry(r, lookup); country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLanguage(r *http.Request, lookup CountryLookup) string {
	if v := r.Header.Get("X-Language"); v != "" {
		return lang.Match(v)
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		if code := lang.FromAcceptLanguage(v); code != lang.Default {
			return code
		}
	}
	return lang.Default
}

func resolveCountry(r *http.Request, lookup CountryLookup) string {
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := clientIPForRateLimit(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// LanguageFromContext returns the negotiated default language code.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LanguageKey).(string); ok {
		return v
	}
	return lang.Default
}

// CountryFromContext returns the ISO country code stored in the request
// context, or empty when unresolved.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}
