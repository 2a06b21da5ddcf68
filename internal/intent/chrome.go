package intent

import "github.com/joss/saydo/internal/textnorm"

// ChromeRules returns the browser tab cascade. Every rule opens a tab by
// keywords; keywords that normalize to nothing fall through. Patterns are
// anchored at the start so a message body never switches to the browser.
func ChromeRules() []Rule {
	kw := Cleaner(textnorm.NormalizeKeywords)

	return []Rule{
		pattern("open_tab",
			OpenOnly,
			`^\s*открой\s+вкладку\s+(?:с\s+)?(?P<target>.+?)\s*$`, kw),

		pattern("open_in_chrome",
			OpenOnly,
			`^\s*открой\s+в\s+chrome\s+(?:вкладку\s+)?(?P<target>.+?)\s*$`, kw),

		// "с" is how "C" is often transcribed; both scripts are accepted.
		pattern("open_in_c",
			OpenOnly,
			`^\s*открой\s+в\s+[cс]\s+(?:вкладку\s+)?(?P<target>.+?)\s*$`, kw),

		pattern("find_tab",
			OpenOnly,
			`^\s*найди\s+(?:в\s+chrome\s+)?(?:вкладку\s+)?(?P<target>.+?)\s*$`, kw),

		pattern("open_x_in_chrome",
			OpenOnly,
			`^\s*открой\s+(?P<target>.+?)\s+в\s+(?:chrome|[cс])\s*$`, kw),
	}
}
