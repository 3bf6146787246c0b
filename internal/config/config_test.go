package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[source]
email = me@example.com
import_notes = True
import_todos = FALSE
import_media = true

[destination]
token = secret_abc
root_url = https://www.notion.so/workspace/Keep-Import-0123456789abcdef0123456789abcdef
merge_paragraphs = TRUE
rate_limit = 1.5
todos_title = TODOs

[storage]
database_path = /tmp/state.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "me@example.com", cfg.Email)
	assert.True(t, cfg.ImportNotes)
	assert.False(t, cfg.ImportTodos)
	assert.True(t, cfg.ImportMedia)
	assert.Equal(t, "secret_abc", cfg.Token)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", cfg.RootID)
	assert.True(t, cfg.MergeParagraphs)
	assert.Equal(t, 1.5, cfg.RateLimit)
	assert.Equal(t, DefaultNotesTitle, cfg.NotesTitle)
	assert.Equal(t, "TODOs", cfg.TodosTitle)
	assert.Equal(t, "/tmp/state.db", cfg.DatabasePath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[source]\nemail = me@example.com\n"))
	require.NoError(t, err)

	assert.True(t, cfg.ImportNotes)
	assert.True(t, cfg.ImportTodos)
	assert.False(t, cfg.ImportMedia)
	assert.False(t, cfg.MergeParagraphs)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultTodosTitle, cfg.TodosTitle)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Empty(t, cfg.RootID)
}

func TestLoad_LegacySections(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[gkeep]
email = old@example.com
import_notes = false
import_todos = true
import_media = false

[notion]
token = secret_old
root_url = https://notion.so/Page-ffffffffffffffffffffffffffffffff
`))
	require.NoError(t, err)

	assert.Equal(t, "old@example.com", cfg.Email)
	assert.False(t, cfg.ImportNotes)
	assert.True(t, cfg.ImportTodos)
	assert.Equal(t, "secret_old", cfg.Token)
	assert.Equal(t, "ffffffff-ffff-ffff-ffff-ffffffffffff", cfg.RootID)
}

func TestLoad_CurrentSectionWinsOverLegacy(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[gkeep]\nemail = old@example.com\n[source]\nemail = new@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", cfg.Email)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GKEEP2NOTION_DESTINATION_TOKEN", "from-env")
	cfg, err := Load(writeConfig(t, "[destination]\ntoken = from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestLoad_NonTrueBooleansAreFalse(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[source]\nimport_notes = yes\nimport_todos = 1\n"))
	require.NoError(t, err)
	assert.False(t, cfg.ImportNotes)
	assert.False(t, cfg.ImportTodos)
}

func TestLoad_InvalidRateLimitFallsBack(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[destination]\nrate_limit = fast\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, err.Error(), "missing.ini")
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "token")
}

func TestParseRootURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.notion.so/My-Page-0123456789abcdef0123456789abcdef", "01234567-89ab-cdef-0123-456789abcdef"},
		{"https://notion.so/team/Page-0123456789abcdef0123456789abcdef/", "01234567-89ab-cdef-0123-456789abcdef"},
		{"https://notion.so/0123456789abcdef0123456789abcdef", "01234567-89ab-cdef-0123-456789abcdef"},
		{"http://notion.so/Page-0123456789abcdef0123456789abcdef", ""},
		{"https://example.com/Page-0123456789abcdef0123456789abcdef", ""},
		{"https://notion.so/Page-0123456789abcdef", ""},
		{"https://notion.so/Page-0123456789ABCDEF0123456789ABCDEF", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRootURL(tt.url))
		})
	}
}
