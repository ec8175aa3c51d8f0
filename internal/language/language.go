// Package language normalises user supplied language names and codes and
// guesses the language of subtitle text.
package language

import (
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// base codes recognised by English name, e.g. "German" -> "de"
var knownCodes = []string{
	"ar", "bg", "ca", "cs", "da", "de", "el", "en", "es", "et", "fa", "fi",
	"fr", "he", "hi", "hr", "hu", "id", "it", "ja", "ko", "lt", "lv", "ms",
	"nl", "no", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv", "th", "tr",
	"uk", "vi", "zh",
}

var (
	namesOnce  sync.Once
	codeByName map[string]string
)

func names() map[string]string {
	namesOnce.Do(func() {
		namer := display.English.Languages()
		codeByName = make(map[string]string, len(knownCodes))
		for _, code := range knownCodes {
			name := namer.Name(language.MustParse(code))
			codeByName[strings.ToLower(name)] = code
		}
	})
	return codeByName
}

// Code returns the ISO 639-1 base code for an English language name or a
// BCP 47 tag ("German", "de", "pt-BR" -> "pt").
func Code(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if code, ok := names()[strings.ToLower(s)]; ok {
		return code, true
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// Name returns the English display name of a language code or name. Unknown
// input is returned unchanged.
func Name(s string) string {
	code, ok := Code(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	name := display.English.Languages().Name(language.MustParse(code))
	if name == "" {
		return strings.TrimSpace(s)
	}
	return name
}

// Same reports whether two names or codes refer to the same language.
func Same(a, b string) bool {
	ca, okA := Code(a)
	cb, okB := Code(b)
	if okA && okB {
		return ca == cb
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Detect guesses the language of the given lines by majority vote over the
// reliable per-line detections and returns its English name.
func Detect(lines []string) (string, bool) {
	votes := make(map[whatlanggo.Lang]int)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		info := whatlanggo.Detect(line)
		if !info.IsReliable() {
			continue
		}
		votes[info.Lang]++
	}

	var (
		top      whatlanggo.Lang
		topCount int
	)
	for lang, count := range votes {
		if count > topCount || (count == topCount && lang.Iso6391() < top.Iso6391()) {
			top = lang
			topCount = count
		}
	}
	if topCount == 0 {
		return "", false
	}
	return Name(top.Iso6391()), true
}
