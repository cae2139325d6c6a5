package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

//go:embed locales/*.json
var localesFS embed.FS

const (
	LangEN      = "en"
	LangZH      = "zh"
	DefaultLang = LangEN
)

// Supported lists the bundled locales.
var Supported = []string{LangEN, LangZH}

type contextKey struct{}

var (
	loadOnce     sync.Once
	loadErr      error
	translations map[string]map[string]string
)

// Load reads the embedded JSON locale files. Later calls return the first result.
func Load(log logrus.FieldLogger) error {
	loadOnce.Do(func() {
		t := make(map[string]map[string]string)
		for _, lang := range Supported {
			data, err := localesFS.ReadFile("locales/" + lang + ".json")
			if err != nil {
				loadErr = fmt.Errorf("read %s.json: %w", lang, err)
				return
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				loadErr = fmt.Errorf("parse %s.json: %w", lang, err)
				return
			}
			flat := make(map[string]string)
			flatten("", raw, flat)
			t[lang] = flat
		}
		translations = t
		if log != nil {
			log.WithFields(logrus.Fields{"en": len(t[LangEN]), "zh": len(t[LangZH])}).Info("i18n: locales loaded")
		}
	})
	return loadErr
}

// flatten turns nested JSON objects into dot-notation keys.
func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			flatten(key, val, out)
		}
	}
}

func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKey{}, lang)
}

// GetLocale returns the locale from the context, or DefaultLang.
func GetLocale(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// T translates key using the locale from ctx, falling back to English and
// then to the key itself. Args are applied with fmt.Sprintf.
func T(ctx context.Context, key string, args ...any) string {
	lang := GetLocale(ctx)

	if s, ok := translations[lang][key]; ok {
		return format(s, args)
	}
	if lang != DefaultLang {
		if s, ok := translations[DefaultLang][key]; ok {
			return format(s, args)
		}
	}
	return key
}

func format(s string, args []any) string {
	if len(args) == 0 || !strings.Contains(s, "%") {
		return s
	}
	return fmt.Sprintf(s, args...)
}
