package render

import (
	"github.com/joss/saydo/internal/history"
	sstrings "github.com/joss/saydo/internal/strings"
)

// History renders stored entries, newest first.
func (r *Renderer) History(entries []history.Entry, title string) {
	if len(entries) == 0 {
		r.Empty("No history entries found")
		return
	}

	r.Header("%s (%d)", title, len(entries))

	for _, e := range entries {
		ts := e.Time.Local().Format("2006-01-02 15:04:05")
		switch e.Kind {
		case history.KindHeard:
			r.Println("%s %s %s", paint(r.pretty, dim, "…"), paint(r.pretty, dim, ts), e.Text)
		case history.KindUnrecognized:
			r.Println("%s %s %s", paint(r.pretty, amber, "?"), paint(r.pretty, dim, ts), e.Text)
			if e.FullText != e.Text {
				r.Nested("heard: %s", sstrings.Truncate(e.FullText, 70))
			}
		default:
			icon := paint(r.pretty, green, BoolIcon(true))
			if !e.OK {
				icon = paint(r.pretty, red, BoolIcon(false))
			}
			r.Println("%s %s %s%s", icon, paint(r.pretty, dim, ts), e.Text, r.duration(e.Duration))
			if e.Intent != "" {
				r.SubItem("%s %s -> %s", e.Driver, e.Intent, e.Target)
			}
			if !e.OK && e.Error != "" {
				r.Nested("%s: %s", e.Failure, sstrings.Truncate(e.Error, 70))
			}
		}
	}
}
