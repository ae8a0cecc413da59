// Package locale resolves the user's display language.
package locale

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is used when no locale is configured or the configured one is unusable.
var Default = Locale{tag: language.English}

// envKeys are consulted in order by FromEnv.
var envKeys = []string{"APP_LOCALE", "LC_ALL", "LC_MESSAGES", "LANG"}

// Locale is a BCP 47 language tag.
type Locale struct {
	tag language.Tag
}

// Parse parses a BCP 47 tag or a POSIX locale name such as "de_DE.UTF-8".
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "":
		return Locale{}, fmt.Errorf("empty locale")
	case "C", "POSIX":
		return Default, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return Locale{}, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return Locale{tag: tag}, nil
}

// FromEnv resolves the locale from the process environment.
func FromEnv() Locale {
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the locale from the first usable environment key.
func FromLookup(lookup func(string) (string, bool)) Locale {
	for _, key := range envKeys {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if l, err := Parse(v); err == nil {
			return l
		}
	}
	return Default
}

// Tag returns the language tag.
func (l Locale) Tag() language.Tag {
	if l.tag == language.Und {
		return Default.tag
	}
	return l.tag
}

func (l Locale) String() string {
	return l.Tag().String()
}

// DisplayLanguage returns the name of the base language in that language,
// e.g. "Deutsch" for de-AT.
func (l Locale) DisplayLanguage() string {
	base, _ := l.Tag().Base()
	if name := display.Self.Name(base); name != "" {
		return name
	}
	return display.English.Languages().Name(base)
}
