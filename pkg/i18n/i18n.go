package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed messages/*.json
var messagesFS embed.FS

// Supported locales. German is the primary audience of the shelf UI.
const (
	LocaleEnglish = "en"
	LocaleGerman  = "de"
	DefaultLocale = LocaleEnglish
)

type localeKey struct{}

var (
	catalogs     map[string]map[string]string
	catalogsOnce sync.Once
)

// loadCatalogs reads the embedded message files once and flattens nested keys
// into dot notation ("errors.not_found").
func loadCatalogs() {
	catalogsOnce.Do(func() {
		catalogs = make(map[string]map[string]string)
		for _, locale := range []string{LocaleEnglish, LocaleGerman} {
			data, err := messagesFS.ReadFile("messages/" + locale + ".json")
			if err != nil {
				continue
			}
			var tree map[string]any
			if err := json.Unmarshal(data, &tree); err != nil {
				continue
			}
			flat := make(map[string]string)
			flatten("", tree, flat)
			catalogs[locale] = flat
		}
	})
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
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

// Localizer translates message keys for one locale
type Localizer struct {
	locale string
}

// NewLocalizer creates a localizer; unsupported locales fall back to English.
func NewLocalizer(locale string) *Localizer {
	loadCatalogs()
	if locale != LocaleEnglish && locale != LocaleGerman {
		locale = DefaultLocale
	}
	return &Localizer{locale: locale}
}

// T translates key, substituting {param} placeholders. Unknown keys are returned as is.
func (l *Localizer) T(key string, params ...map[string]string) string {
	msg, ok := catalogs[l.locale][key]
	if !ok {
		msg, ok = catalogs[DefaultLocale][key]
	}
	if !ok {
		return key
	}
	if len(params) > 0 {
		for k, v := range params[0] {
			msg = strings.ReplaceAll(msg, "{"+k+"}", v)
		}
	}
	return msg
}

// Locale returns the localizer's locale
func (l *Localizer) Locale() string {
	return l.locale
}

// WithLocale adds locale to context
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext retrieves the locale, defaulting to English
func LocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}

// ParseAcceptLanguage picks the supported locale with the highest q value.
func ParseAcceptLanguage(header string) string {
	type candidate struct {
		locale string
		q      float64
	}
	var found []candidate
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		tag := strings.ToLower(strings.TrimSpace(fields[0]))
		base, _, _ := strings.Cut(tag, "-")
		if base != LocaleEnglish && base != LocaleGerman {
			continue
		}
		q := 1.0
		for _, p := range fields[1:] {
			if v, ok := strings.CutPrefix(strings.TrimSpace(p), "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		found = append(found, candidate{base, q})
	}
	if len(found) == 0 {
		return DefaultLocale
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].q > found[j].q })
	return found[0].locale
}

// T translates using the default locale
func T(key string, params ...map[string]string) string {
	return NewLocalizer(DefaultLocale).T(key, params...)
}

// TFromContext translates using the locale stored in ctx
func TFromContext(ctx context.Context, key string, params ...map[string]string) string {
	return NewLocalizer(LocaleFromContext(ctx)).T(key, params...)
}
