package intent

import (
	"regexp"
	"strings"

	"github.com/joss/saydo/internal/domain"
)

// Parser evaluates one driver's rules in order; the first match wins.
type Parser struct {
	driver string
	rules  []Rule
}

// NewParser creates a parser that tags its commands with driver.
func NewParser(driver string, rules []Rule) *Parser {
	return &Parser{driver: driver, rules: rules}
}

// Telegram returns the messenger parser.
func Telegram() *Parser { return NewParser(domain.DriverTelegram, TelegramRules()) }

// Chrome returns the browser parser.
func Chrome() *Parser { return NewParser(domain.DriverChrome, ChromeRules()) }

// Driver is the driver this parser produces commands for.
func (p *Parser) Driver() string { return p.driver }

// Parse returns the command of the first matching rule.
func (p *Parser) Parse(text string) (Command, bool) {
	cmd, _, ok := p.Match(text)
	return cmd, ok
}

// Match is Parse that also reports the name of the rule that fired.
func (p *Parser) Match(text string) (Command, string, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Command{}, "", false
	}
	for _, r := range p.rules {
		if cmd, ok := r.TryMatch(t); ok {
			cmd.Driver = p.driver
			return cmd, r.Name(), true
		}
	}
	return Command{}, "", false
}

// Intents lists the intents this parser can produce, in rule order.
func (p *Parser) Intents() []Intent {
	seen := make(map[Intent]bool)
	var out []Intent
	for _, r := range p.rules {
		if !seen[r.Intent()] {
			seen[r.Intent()] = true
			out = append(out, r.Intent())
		}
	}
	return out
}

// Rules lists rule names in evaluation order.
func (p *Parser) Rules() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.Name()
	}
	return names
}

// Router tries several driver parsers in order.
type Router struct {
	parsers []*Parser
}

// NewRouter creates a router over parsers, tried in the given order.
func NewRouter(parsers ...*Parser) *Router {
	return &Router{parsers: parsers}
}

// DefaultRouter puts the browser phrasings first since they are the more
// specific ones ("открой вкладку X" would otherwise open a chat). They only
// match at the start of the utterance.
func DefaultRouter() *Router {
	return NewRouter(Chrome(), Telegram())
}

// Parse returns the first command any parser recognizes.
func (r *Router) Parse(text string) (Command, bool) {
	cmd, _, ok := r.Match(text)
	return cmd, ok
}

// Match is Parse that also reports the rule that fired.
func (r *Router) Match(text string) (Command, string, bool) {
	for _, p := range r.parsers {
		if cmd, rule, ok := p.Match(text); ok {
			return cmd, rule, true
		}
	}
	return Command{}, "", false
}

// Parsers returns the routed parsers in order.
func (r *Router) Parsers() []*Parser {
	return append([]*Parser(nil), r.parsers...)
}

func mustCompileCI(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
