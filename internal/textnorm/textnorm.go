// Package textnorm provides the text normalization shared by every stage of
// the command pipeline.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize case-folds s, collapses "ё" to "е", trims it and collapses
// whitespace runs to a single space. It never fails and is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}

// CleanOneLine flattens s to a single line with collapsed whitespace,
// preserving case. Used on message bodies before they are typed.
func CleanOneLine(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Correction maps a frequent speech-recognition mistake to its fix.
type Correction struct {
	Wrong string
	Right string
}

// SpeechCorrections is applied in order by CorrectSpeech.
var SpeechCorrections = []Correction{
	{"смита", "смета"},
	{"смита фин", "смета фин"},
	{"смита финансовая", "смета финансовая"},
	{"фин смита", "фин смета"},
}

// CorrectSpeech replaces known recognition mistakes in s. Both the lowercase
// and the capitalized spelling of each mistake are rewritten.
func CorrectSpeech(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	out := s
	for _, c := range SpeechCorrections {
		if !strings.Contains(lower, c.Wrong) {
			continue
		}
		out = strings.ReplaceAll(out, c.Wrong, c.Right)
		out = strings.ReplaceAll(out, capitalize(c.Wrong), capitalize(c.Right))
	}
	return out
}

// KeywordStopWords are dropped from browser search keywords.
var KeywordStopWords = []string{"chrome", "браузер", "вкладка", "вкладку", "открой", "найди"}

// NormalizeKeywords prepares free text for a tab search: lowercases it,
// removes KeywordStopWords and fixes recognition mistakes.
func NormalizeKeywords(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	kept := words[:0]
	for _, w := range words {
		if !isStopWord(w) {
			kept = append(kept, w)
		}
	}
	return strings.TrimSpace(CorrectSpeech(strings.Join(kept, " ")))
}

func isStopWord(w string) bool {
	for _, sw := range KeywordStopWords {
		if w == sw {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
