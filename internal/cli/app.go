package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/gkeep2notion/internal/audit"
	"github.com/mrlokans/gkeep2notion/internal/auth"
	"github.com/mrlokans/gkeep2notion/internal/config"
	"github.com/mrlokans/gkeep2notion/internal/database"
	auditrepo "github.com/mrlokans/gkeep2notion/internal/database/audit"
	"github.com/mrlokans/gkeep2notion/internal/keep"
	"github.com/mrlokans/gkeep2notion/internal/tokenstore"
)

// Common holds the flags and collaborators every command shares. The
// unexported fields are replaced in tests.
type Common struct {
	ConfigPath string
	Verbose    bool

	Out    io.Writer
	Logger *slog.Logger

	prompt      auth.CredentialProvider
	keepOptions []keep.Option
}

func (c *Common) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ConfigPath, "config", "c", config.DefaultConfigPath, "Path to the INI config file")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "Enable debug logging")
}

func (c *Common) init() {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = NewLogger(c.Verbose)
		slog.SetDefault(c.Logger)
	}
	if c.prompt == nil {
		c.prompt = auth.NewTerminalPrompt()
	}
}

func (c *Common) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// env is what a command needs once the config file has been read.
type env struct {
	cfg    *config.Config
	db     *database.Database
	tokens *tokenstore.Store
	audit  *audit.Service
}

func (c *Common) open() (*env, error) {
	c.init()

	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("Config file %s not found", c.ConfigPath)
		}
		return nil, err
	}

	db, err := database.Open(cfg.DatabasePath, c.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tokens, err := tokenstore.New(db.DB, tokenstore.Config{
		EncryptionKey: cfg.EncryptionKey,
		KeyFilePath:   cfg.KeyFile,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	return &env{
		cfg:    cfg,
		db:     db,
		tokens: tokens,
		audit:  audit.NewService(auditrepo.NewRepository(db.DB), c.Logger),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

func (c *Common) keepClient() *keep.Client {
	opts := append([]keep.Option{keep.WithLogger(c.Logger)}, c.keepOptions...)
	return keep.NewClient(opts...)
}

func (c *Common) authenticator(e *env, session auth.Session) *auth.Authenticator {
	return auth.NewAuthenticator(session, e.tokens, c.prompt, config.Namespace, c.Logger)
}
