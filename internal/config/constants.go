package config

const (
	// DefaultConfigPath is where the import command looks for its config file
	DefaultConfigPath = "./config.ini"

	// DefaultDatabasePath holds the session store and import history
	DefaultDatabasePath = "./gkeep2notion.db"

	// EnvPrefix prefixes environment overrides, e.g. GKEEP2NOTION_DESTINATION_TOKEN
	EnvPrefix = "GKEEP2NOTION"

	// Namespace is the credential store namespace for Keep session tokens
	Namespace = "gkeep2notion"

	DefaultRateLimit  = 3.0
	DefaultNotesTitle = "Notes"
	DefaultTodosTitle = "Todos"
)
