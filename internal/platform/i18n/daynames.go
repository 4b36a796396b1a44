// Package i18n resolves the request locale and localized day names.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.Russian,
	language.Uzbek,
}

var matcher = language.NewMatcher(supported)

// dayNames is indexed like supported, then by store day minus one (Monday first).
var dayNames = [][7]string{
	{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"},
	{"Dushanba", "Seshanba", "Chorshanba", "Payshanba", "Juma", "Shanba", "Yakshanba"},
}

type localeCtxKey struct{}

// WithLocale stores the resolved locale in ctx.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeCtxKey{}, tag)
}

// LocaleFromCtx returns the locale stored by WithLocale.
func LocaleFromCtx(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeCtxKey{}).(language.Tag)
	return tag, ok
}

// Localizer picks one of the supported locales and names days in it.
type Localizer struct {
	fallback int
}

// NewLocalizer creates a Localizer whose fallback is the closest supported match of defaultLocale.
func NewLocalizer(defaultLocale string) *Localizer {
	l := &Localizer{}
	if tag, err := language.Parse(defaultLocale); err == nil {
		if _, idx, conf := matcher.Match(tag); conf != language.No {
			l.fallback = idx
		}
	}
	return l
}

// Match resolves an Accept-Language header value to a supported locale.
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[l.fallback]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return supported[l.fallback]
	}
	return supported[idx]
}

// DayName returns the localized name of a store-convention day, or "" for an invalid code.
func (l *Localizer) DayName(ctx context.Context, storeDay int) string {
	if storeDay < 1 || storeDay > 7 {
		return ""
	}
	idx := l.fallback
	if tag, ok := LocaleFromCtx(ctx); ok {
		if _, i, conf := matcher.Match(tag); conf != language.No {
			idx = i
		}
	}
	return dayNames[idx][storeDay-1]
}
