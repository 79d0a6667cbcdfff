package config

import "os"

// DefaultPath resolves the settings file location from CONFIG_PATH.
func DefaultPath() string {
	return getEnv("CONFIG_PATH", "config/config.yaml")
}

// applyEnv layers deployment overrides and secrets on top of the file.
func applyEnv(s *Settings) {
	s.Server.Port = getEnv("PORT", s.Server.Port)
	s.Data.Backend = getEnv("DATA_BACKEND", s.Data.Backend)
	s.Data.JSONPath = getEnv("DATA_JSON_PATH", s.Data.JSONPath)
	s.Data.SQLitePath = getEnv("SQLITE_DB_PATH", s.Data.SQLitePath)

	s.AMQP.URL = getEnv("AMQP_URL", s.AMQP.URL)
	s.AMQP.Exchange = getEnv("AMQP_EXCHANGE", s.AMQP.Exchange)
	s.AMQP.Queue = getEnv("AMQP_QUEUE", s.AMQP.Queue)

	s.Sheets.SpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", s.Sheets.SpreadsheetID)
	s.Sheets.SheetName = getEnv("GOOGLE_SHEET_NAME", s.Sheets.SheetName)

	s.Email.APIURL = getEnv("MAIL_API_URL", s.Email.APIURL)
	s.Email.From = getEnv("MAIL_FROM", s.Email.From)
	s.Email.APIKey = getEnv("MAIL_API_KEY", s.Email.APIKey)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
