// Package match picks the on-screen line that best matches a spoken target.
//
// Lines come from OCR of a search result list or a browser tab strip, so
// every comparison is made on normalized text and tolerates recognition noise.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/joss/saydo/internal/textnorm"
)

const (
	// ChatOverlapThreshold is the minimum character overlap for a chat line.
	ChatOverlapThreshold = 0.7

	// TabScoreThreshold is the minimum combined score for a partial tab match.
	TabScoreThreshold = 0.5

	// maxLengthSlack bounds the length difference for a containment match.
	maxLengthSlack = 2
)

// Match is the selected line. Index is -1 when nothing qualified.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Found bool    `json:"found"`
}

// NotFound is the empty match.
var NotFound = Match{Index: -1}

func found(i int, score float64) Match {
	return Match{Index: i, Score: score, Found: true}
}

// BestChatLine finds the chat search result naming target.
//
// Tiers are tried in order: exact normalized equality, containment with
// nearly equal length (first line wins), then character-set overlap above
// ChatOverlapThreshold (best line wins, earliest on ties).
func BestChatLine(lines []string, target string) Match {
	want := textnorm.Normalize(target)
	if want == "" || len(lines) == 0 {
		return NotFound
	}

	norm := make([]string, len(lines))
	for i, l := range lines {
		norm[i] = textnorm.Normalize(l)
	}

	for i, l := range norm {
		if l == want {
			return found(i, 1.0)
		}
	}

	wantLen := utf8.RuneCountInString(want)
	for i, l := range norm {
		if strings.Contains(l, want) || strings.Contains(want, l) {
			if abs(utf8.RuneCountInString(l)-wantLen) <= maxLengthSlack {
				return found(i, 0.9)
			}
		}
	}

	wantChars := charSet(want)
	best := NotFound
	for i, l := range norm {
		score := float64(intersect(wantChars, charSet(l))) / float64(max(len(wantChars), 1))
		if score > best.Score && score > ChatOverlapThreshold {
			best = found(i, score)
		}
	}
	return best
}

// BestTabLine finds the browser tab title matching keywords.
//
// An exact line returns immediately. A line containing every keyword scores
// by how much of the title the keywords cover. Other lines blend Similarity
// with the share of keywords present and must exceed TabScoreThreshold.
func BestTabLine(lines []string, keywords string) Match {
	kw := textnorm.Normalize(keywords)
	words := strings.Fields(kw)
	best := NotFound

	for i, line := range lines {
		l := textnorm.Normalize(line)
		if l == kw {
			return found(i, 1.0)
		}

		if containsAll(l, words) {
			score := min(float64(len(words))/float64(max(len(strings.Fields(l)), 1)), 1)
			if score > best.Score {
				best = found(i, score)
			}
			continue
		}

		score := Similarity(kw, l)
		if len(words) > 0 {
			hits := 0
			for _, w := range words {
				if strings.Contains(l, w) || strings.Contains(w, l) {
					hits++
				}
			}
			score = score*0.6 + float64(hits)/float64(len(words))*0.4
		}
		if score > best.Score && score > TabScoreThreshold {
			best = found(i, score)
		}
	}
	return best
}

// Similarity scores two strings in [0,1]: 1 for equal, 0.9 for containment,
// otherwise the Jaccard index of their space-stripped character sets.
func Similarity(a, b string) float64 {
	a, b = textnorm.Normalize(a), textnorm.Normalize(b)
	if a == b {
		return 1.0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 0.9
	}

	ca, cb := charSet(a), charSet(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}
	inter := intersect(ca, cb)
	union := len(ca) + len(cb) - inter
	return float64(inter) / float64(union)
}

// CleanLines splits recognized text into trimmed lines, dropping blanks
// and single-character noise.
func CleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > 1 {
			out = append(out, line)
		}
	}
	return out
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range s {
		if r != ' ' {
			set[r] = struct{}{}
		}
	}
	return set
}

func intersect(a, b map[rune]struct{}) int {
	n := 0
	for r := range a {
		if _, ok := b[r]; ok {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
