package intent

import "strings"

// TelegramRules returns the messenger cascade. Structured phrasings come
// before looser ones; the word-count split is the last message rule.
func TelegramRules() []Rule {
	openChat := pattern("open_chat",
		OpenOnly,
		`открой\s+(?:чат\s+)?(?P<target>.+?)\s*$`)
	openChat.guard = func(text string) bool {
		return !strings.Contains(strings.ToLower(text), "и напиши")
	}

	return []Rule{
		pattern("open_and_write",
			SendMessage,
			`открой\s+чат\s+(?P<target>.+?)\s+и\s+напиши\s+[«"“](?P<msg>.+?)[»"”]\s*$`),

		pattern("write_in_chat_colon",
			SendMessage,
			`напиши\s+в\s+чат\s+(?P<target>.+?)\s*:\s*(?P<msg>.+?)\s*$`),

		pattern("write_in_colon",
			SendMessage,
			`напиши\s+в\s+(?P<target>.+?)\s*:\s*(?P<msg>.+?)\s*$`),

		pattern("write_in_that",
			SendMessage,
			`напиши\s+в\s+(?P<target>.+?)\s+что\s+(?P<msg>.+?)\s*$`),

		pattern("write_message",
			SendMessage,
			`напиши\s+(?P<target>.+?)\s+сообщение\s+(?P<msg>.+?)\s*$`,
			stripLeading("в", "к", "ко")),

		pattern("write_to_chat_that",
			SendMessage,
			`написа(?:ть|ться)\s+в\s+чат\s+(?P<target>.+?)\s*,?\s+что\s+(?P<msg>.+?)\s*$`),

		pattern("app_send_in",
			SendMessage,
			`отправ[ьи]\s+в\s+`+appName+`\s+в\s+(?:чат\s+)?(?P<target>.+?)\s+сообщение\s+(?P<msg>.+?)\s*$`),

		pattern("app_send",
			SendMessage,
			`отправ[ьи]\s+в\s+`+appName+`\s+(?P<target>.+?)\s+сообщение\s+(?P<msg>.+?)\s*$`,
			stripLeading("в")),

		pattern("send_message",
			SendMessage,
			`отправ[ьи]\s+(?P<target>.+?)\s+сообщение\s+(?P<msg>.+?)\s*$`,
			stripLeading("в", "к", "ко"), stripAppName, collapseSpaces, rejectAppName),

		&splitRule{
			name:  "send_message_split",
			re:    mustCompileCI(`отправ[ьи]\s+сообщение\s+(?P<rest>.+?)\s*$`),
			clean: []Cleaner{stripLeading("в"), stripAppName, collapseSpaces, rejectAppName},
		},

		pattern("app_open",
			OpenOnly,
			`отправ[ьи]\s+в\s+`+appName+`\s+(?P<target>.+?)\s*$`,
			stripLeading("в")),

		pattern("paste_from_buffer",
			Paste,
			`отправ[ьи]\s+из\s+буфера(?:\s+обмена)?\s+в\s+(?:чат\s+)?(?P<target>.+?)\s*$`),

		pattern("paste_insert",
			Paste,
			`встав[ьи]\s+в\s+(?:чат\s+)?(?P<target>.+?)\s*$`),

		openChat,
	}
}
