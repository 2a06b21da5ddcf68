// Package listen runs the hands-free mode: transcribe speech, wait for the
// wake word, execute the command that follows it, listen again.
package listen

import (
	"regexp"
	"sort"
	"strings"
)

// WakeWords are the ways speech recognition spells the assistant's name.
var WakeWords = []string{
	"saydo", "say do",
	"сейдо", "сойду", "сейду", "сейдоу", "зейду",
	"сей до", "сой ду", "сей ду", "зей ду",
	"агент", "агента", "агенту", "агенте", "агентом", "агенты",
}

const commandTrim = " ,.?!;:"

// Wake is the result of scanning one transcription for a wake word.
type Wake struct {
	Found   bool
	Keyword string
	// Command is the text after the keyword, possibly empty.
	Command string
}

// Detector finds the earliest wake word in a transcription.
type Detector struct {
	re *regexp.Regexp
}

// NewDetector compiles words into a detector. At equal positions longer
// words win, so "агента" is never read as "агент" followed by "а".
func NewDetector(words []string) *Detector {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	alts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		parts := strings.Fields(w)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		if len(parts) > 0 {
			alts = append(alts, strings.Join(parts, `\s+`))
		}
	}
	if len(alts) == 0 {
		return &Detector{}
	}
	return &Detector{re: regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)}
}

var defaultDetector = NewDetector(WakeWords)

// Extract scans text for the default wake words.
func Extract(text string) Wake {
	return defaultDetector.Extract(text)
}

// Extract returns the command following the first wake word in text.
func (d *Detector) Extract(text string) Wake {
	if d.re == nil {
		return Wake{}
	}
	loc := d.re.FindStringIndex(text)
	if loc == nil {
		return Wake{}
	}
	rest := strings.TrimSpace(text[loc[1]:])
	return Wake{
		Found:   true,
		Keyword: strings.ToLower(text[loc[0]:loc[1]]),
		Command: strings.TrimLeft(rest, commandTrim),
	}
}
