package intent

import (
	"regexp"
	"strings"
)

// Rule recognizes one phrasing.
type Rule interface {
	Name() string
	Intent() Intent
	TryMatch(text string) (Command, bool)
}

// Cleaner post-processes a captured target.
type Cleaner func(string) string

// patternRule matches a case-insensitive pattern with named groups
// "target" and, for messages, "msg".
type patternRule struct {
	name   string
	intent Intent
	re     *regexp.Regexp
	clean  []Cleaner
	// guard rejects texts the pattern would otherwise accept.
	guard func(text string) bool
}

func pattern(name string, in Intent, expr string, clean ...Cleaner) *patternRule {
	return &patternRule{
		name:   name,
		intent: in,
		re:     regexp.MustCompile(`(?i)` + expr),
		clean:  clean,
	}
}

func (r *patternRule) Name() string   { return r.name }
func (r *patternRule) Intent() Intent { return r.intent }

func (r *patternRule) TryMatch(text string) (Command, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return Command{}, false
	}
	if r.guard != nil && !r.guard(text) {
		return Command{}, false
	}

	target := applyCleaners(m[r.re.SubexpIndex("target")], r.clean)
	if target == "" {
		return Command{}, false
	}

	cmd := Command{Intent: r.intent, Target: target}
	if r.intent == SendMessage {
		cmd.Message = strings.TrimSpace(m[r.re.SubexpIndex("msg")])
		if cmd.Message == "" {
			return Command{}, false
		}
	}
	return cmd, true
}

// splitRule handles "отправь сообщение <rest>" where the name and the
// message are not separated by any marker. Three or more words give a
// two-word name; two words give a one-word name; one word never matches.
type splitRule struct {
	name  string
	re    *regexp.Regexp
	clean []Cleaner
}

func (r *splitRule) Name() string   { return r.name }
func (r *splitRule) Intent() Intent { return SendMessage }

func (r *splitRule) TryMatch(text string) (Command, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return Command{}, false
	}

	words := strings.Fields(m[r.re.SubexpIndex("rest")])
	var name, msg []string
	switch {
	case len(words) >= 3:
		name, msg = words[:2], words[2:]
	case len(words) == 2:
		name, msg = words[:1], words[1:]
	default:
		return Command{}, false
	}

	target := applyCleaners(strings.Join(name, " "), r.clean)
	if target == "" {
		return Command{}, false
	}
	return Command{Intent: SendMessage, Target: target, Message: strings.Join(msg, " ")}, true
}

func applyCleaners(s string, clean []Cleaner) string {
	s = strings.TrimSpace(s)
	for _, c := range clean {
		s = strings.TrimSpace(c(s))
	}
	return s
}

const appName = `(?:телеграм(?:ма?)?|telegram)`

var (
	leadingApp  = regexp.MustCompile(`(?i)^\s*` + appName + `\s+`)
	trailingApp = regexp.MustCompile(`(?i)\s+(?:в\s+)?` + appName + `\s*$`)
	bareApp     = regexp.MustCompile(`(?i)^` + appName + `$`)
	chatWord    = regexp.MustCompile(`(?i)^чат\s+`)
	spaces      = regexp.MustCompile(`\s+`)
)

// stripLeading removes one leading preposition from words.
func stripLeading(words ...string) Cleaner {
	re := regexp.MustCompile(`(?i)^(?:` + strings.Join(words, "|") + `)\s+`)
	return func(s string) string {
		return re.ReplaceAllString(s, "")
	}
}

// stripAppName removes the messenger's own name from either end of a target.
func stripAppName(s string) string {
	s = trailingApp.ReplaceAllString(s, "")
	return leadingApp.ReplaceAllString(s, "")
}

// rejectAppName empties a target that is nothing but the messenger's name.
func rejectAppName(s string) string {
	if bareApp.MatchString(strings.TrimSpace(s)) {
		return ""
	}
	return s
}

func stripChatWord(s string) string {
	return chatWord.ReplaceAllString(s, "")
}

func collapseSpaces(s string) string {
	return spaces.ReplaceAllString(s, " ")
}
