// Package tokenstore keeps resumable session tokens encrypted at rest
// with AES-256-GCM, one per (namespace, account) pair.
package tokenstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/gkeep2notion/internal/crypto"
	"github.com/mrlokans/gkeep2notion/internal/entities"
)

const (
	// EnvEncryptionKey overrides the key file when set.
	EnvEncryptionKey = "GKEEP2NOTION_KEY"

	DefaultKeyFileName = ".gkeep2notion-key"
)

// Store reads and writes session tokens.
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
	now       func() time.Time
}

type Config struct {
	// EncryptionKey is a base64-encoded 32-byte key. If empty the key is
	// taken from the environment or the key file.
	EncryptionKey string

	// KeyFilePath defaults to ~/.gkeep2notion-key. A new key is generated
	// there on first use.
	KeyFilePath string
}

// New creates a Store on an open database. The session_tokens table must
// already be migrated.
func New(db *gorm.DB, cfg Config) (*Store, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}
	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}
	return &Store{db: db, encryptor: encryptor, now: time.Now}, nil
}

func resolveEncryptionKey(cfg Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	keyFilePath := KeyFilePath(cfg.KeyFilePath)
	if data, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(data)), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read key file %s: %w", keyFilePath, err)
	}

	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0o600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}
	slog.Info("generated new encryption key", "path", keyFilePath)
	return newKey, nil
}

// KeyFilePath returns customPath, or the default key file in the home
// directory when customPath is empty. A leading "~/" is expanded.
func KeyFilePath(customPath string) string {
	home, homeErr := os.UserHomeDir()
	switch {
	case customPath == "":
		if homeErr != nil {
			return DefaultKeyFileName
		}
		return filepath.Join(home, DefaultKeyFileName)
	case strings.HasPrefix(customPath, "~/") && homeErr == nil:
		return filepath.Join(home, customPath[2:])
	default:
		return customPath
	}
}

// Get returns the stored token, or "" with a nil error when there is none.
func (s *Store) Get(namespace, account string) (string, error) {
	var row entities.SessionToken
	err := s.db.Where("namespace = ? AND account = ?", namespace, account).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	token, err := s.encryptor.Decrypt(row.Token)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	now := s.now()
	if err := s.db.Model(&row).Update("last_used_at", &now).Error; err != nil {
		return "", fmt.Errorf("failed to update last used: %w", err)
	}
	return token, nil
}

// Save stores token, replacing any previous one for the same account.
func (s *Store) Save(namespace, account, token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	sealed, err := s.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	row := entities.SessionToken{Namespace: namespace, Account: account, Token: sealed}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "namespace"}, {Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"token":      sealed,
			"updated_at": s.now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s *Store) Delete(namespace, account string) error {
	err := s.db.Where("namespace = ? AND account = ?", namespace, account).
		Delete(&entities.SessionToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
