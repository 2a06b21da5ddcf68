package domain

// Built-in driver names, shared by the parsers, the registry and config.
const (
	DriverTelegram = "telegram"
	DriverChrome   = "chrome"
)
