// Package browser lists open Chrome tabs and ranks them against spoken
// keywords, mirroring what the chrome driver's OCR step looks for.
package browser

import (
	"context"
	"sort"
	"strings"

	"github.com/joss/saydo/internal/match"
	"github.com/joss/saydo/internal/textnorm"
)

// Tab is one open page.
type Tab struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Lister returns the open tabs in browser order.
type Lister interface {
	Tabs(ctx context.Context) ([]Tab, error)
}

// Ranked is a tab with the keywords found in its title or URL.
type Ranked struct {
	Tab
	Position int      `json:"position"`
	Matched  []string `json:"matched"`
}

// Rank keeps the tabs whose title or URL contain at least one keyword,
// most matched keywords first. Ties keep browser order.
func Rank(tabs []Tab, keywords string) []Ranked {
	words := strings.Fields(textnorm.CorrectSpeech(textnorm.Normalize(keywords)))
	var out []Ranked
	for i, t := range tabs {
		hay := textnorm.Normalize(t.Title + " " + t.URL)
		var matched []string
		for _, w := range words {
			if strings.Contains(hay, w) {
				matched = append(matched, w)
			}
		}
		if len(matched) > 0 {
			out = append(out, Ranked{Tab: t, Position: i, Matched: matched})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return len(out[a].Matched) > len(out[b].Matched)
	})
	return out
}

// Best picks the tab title the on-screen matcher would select.
func Best(tabs []Tab, keywords string) match.Match {
	titles := make([]string, len(tabs))
	for i, t := range tabs {
		titles[i] = t.Title
	}
	return match.BestTabLine(titles, textnorm.NormalizeKeywords(keywords))
}
