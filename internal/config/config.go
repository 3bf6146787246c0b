package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

type (
	Config struct {
		Path string
		Source
		Destination
		Storage
	}

	// Source is the [source] section, [gkeep] in older files.
	Source struct {
		Email       string
		ImportNotes bool
		ImportTodos bool
		ImportMedia bool
	}

	// Destination is the [destination] section, [notion] in older files.
	Destination struct {
		Token           string
		RootURL         string
		RootID          string // Canonical page ID parsed from RootURL, "" if malformed
		MergeParagraphs bool
		RateLimit       float64 // Write calls per second, <= 0 disables throttling
		NotesTitle      string
		TodosTitle      string
	}

	Storage struct {
		DatabasePath  string
		KeyFile       string
		EncryptionKey string
		SnapshotDir   string // Dry runs write rendered pages here when set
	}
)

// legacySections maps current section names to those of older config files.
var legacySections = map[string]string{
	"source":      "gkeep",
	"destination": "notion",
}

// Load reads the INI file at path. Environment variables prefixed with
// GKEEP2NOTION_ override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.database_path", DefaultDatabasePath)
	v.SetDefault("storage.key_file", "")
	v.SetDefault("storage.encryption_key", "")
	v.SetDefault("storage.snapshot_dir", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{
		Path: path,
		Source: Source{
			Email:       lookupString(v, "source", "email", ""),
			ImportNotes: lookupBool(v, "source", "import_notes", true),
			ImportTodos: lookupBool(v, "source", "import_todos", true),
			ImportMedia: lookupBool(v, "source", "import_media", false),
		},
		Destination: Destination{
			Token:           lookupString(v, "destination", "token", ""),
			RootURL:         lookupString(v, "destination", "root_url", ""),
			MergeParagraphs: lookupBool(v, "destination", "merge_paragraphs", false),
			RateLimit:       lookupFloat(v, "destination", "rate_limit", DefaultRateLimit),
			NotesTitle:      lookupString(v, "destination", "notes_title", DefaultNotesTitle),
			TodosTitle:      lookupString(v, "destination", "todos_title", DefaultTodosTitle),
		},
		Storage: Storage{
			DatabasePath:  v.GetString("storage.database_path"),
			KeyFile:       v.GetString("storage.key_file"),
			EncryptionKey: v.GetString("storage.encryption_key"),
			SnapshotDir:   v.GetString("storage.snapshot_dir"),
		},
	}
	cfg.RootID = ParseRootURL(cfg.RootURL)
	if cfg.RootID == "" {
		slog.Warn("destination root_url is not a Notion page URL, page creation will fail", "root_url", cfg.RootURL)
	}
	return cfg, nil
}

// Validate reports settings that make an import impossible.
func (c *Config) Validate() error {
	var errs []error
	if c.Email == "" {
		errs = append(errs, errors.New("source email is required"))
	}
	if c.Token == "" {
		errs = append(errs, errors.New("destination token is required"))
	}
	return errors.Join(errs...)
}

func lookup(v *viper.Viper, section, key string) (string, bool) {
	for _, s := range []string{section, legacySections[section]} {
		if s == "" {
			continue
		}
		if full := s + "." + key; v.IsSet(full) {
			return strings.TrimSpace(v.GetString(full)), true
		}
	}
	return "", false
}

func lookupString(v *viper.Viper, section, key, def string) string {
	if val, ok := lookup(v, section, key); ok && val != "" {
		return val
	}
	return def
}

// lookupBool treats a value as true only when it reads "true" in any case.
func lookupBool(v *viper.Viper, section, key string, def bool) bool {
	val, ok := lookup(v, section, key)
	if !ok {
		return def
	}
	return strings.EqualFold(val, "true")
}

func lookupFloat(v *viper.Viper, section, key string, def float64) float64 {
	val, ok := lookup(v, section, key)
	if !ok || val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		slog.Warn("invalid number in config, using default", "key", section+"."+key, "value", val, "default", def)
		return def
	}
	return f
}

var rootURLPattern = regexp.MustCompile(`^https://(?:www\.)?notion\.so/(?:.*?)([0-9a-f]{32})/?$`)

// ParseRootURL extracts the page ID from a Notion page URL and returns it in
// dashed 8-4-4-4-12 form. Anything else yields "".
func ParseRootURL(rawURL string) string {
	m := rootURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return ""
	}
	id, err := uuid.Parse(m[1])
	if err != nil {
		return ""
	}
	return id.String()
}
