package i18n

import (
	"net/http"
	"strings"
)

const CookieName = "lang"

// Middleware picks the language from the lang cookie, then Accept-Language,
// and stores it in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lang string
		if c, err := r.Cookie(CookieName); err == nil && IsSupported(c.Value) {
			lang = c.Value
		} else {
			lang = parseAcceptLanguage(r.Header.Get("Accept-Language"))
		}

		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), lang)))
	})
}

func parseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if strings.HasPrefix(tag, "zh") {
			return LangZH
		}
		if strings.HasPrefix(tag, "en") {
			return LangEN
		}
	}
	return DefaultLang
}
