package entities

import "time"

// SessionToken stores an encrypted resumable session token for an
// external account
type SessionToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Namespace identifies the application that owns the token (e.g. "gkeep2notion")
	Namespace string `gorm:"type:varchar(100);not null;uniqueIndex:idx_namespace_account" json:"namespace"`

	// Account is the account identifier the token belongs to, usually an email
	Account string `gorm:"type:varchar(255);not null;uniqueIndex:idx_namespace_account" json:"account"`

	// Token is stored as base64-encoded AES-256-GCM ciphertext
	Token string `gorm:"type:text;not null" json:"-"`

	// LastUsedAt tracks when the token was last read for a resume
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// TableName specifies the table name for GORM
func (SessionToken) TableName() string {
	return "session_tokens"
}
