package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Outcome tells how a session was established.
type Outcome int

const (
	// OutcomeNoSession means no token was stored for the account.
	OutcomeNoSession Outcome = iota
	// OutcomeResumed means the stored token was accepted.
	OutcomeResumed
	// OutcomeResumeFailed means a stored token exists but was rejected.
	OutcomeResumeFailed
	// OutcomeLoggedIn means the password was used and a new token stored.
	OutcomeLoggedIn
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoSession:
		return "no session"
	case OutcomeResumed:
		return "resumed"
	case OutcomeResumeFailed:
		return "resume failed"
	case OutcomeLoggedIn:
		return "logged in"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ErrNoPassword is returned when the credential provider yields nothing.
var ErrNoPassword = errors.New("no password provided")

// Session is the source service client being authenticated.
type Session interface {
	Login(ctx context.Context, email, password string) error
	Resume(ctx context.Context, email, masterToken string) error
	MasterToken() string
}

// TokenStore persists master tokens per namespace and account.
type TokenStore interface {
	Get(namespace, account string) (string, error)
	Save(namespace, account, token string) error
	Delete(namespace, account string) error
}

// CredentialProvider supplies the account password on demand.
type CredentialProvider interface {
	Password(email string) (string, error)
}

type Authenticator struct {
	session     Session
	store       TokenStore
	credentials CredentialProvider
	namespace   string
	logger      *slog.Logger
}

func NewAuthenticator(session Session, store TokenStore, credentials CredentialProvider, namespace string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		session:     session,
		store:       store,
		credentials: credentials,
		namespace:   namespace,
		logger:      logger,
	}
}

// Login resumes the stored session for email, falling back to one
// interactive password login.
func (a *Authenticator) Login(ctx context.Context, email string) (Outcome, error) {
	outcome, err := a.Resume(ctx, email)
	if err != nil {
		return outcome, err
	}

	switch outcome {
	case OutcomeResumed:
		return outcome, nil
	case OutcomeResumeFailed:
		a.logger.Warn("stored session rejected, logging in again", "email", email)
	default:
		a.logger.Info("no stored session, logging in", "email", email)
	}
	return a.Interactive(ctx, email)
}

// Resume tries the stored token only. A rejected token is reported as
// OutcomeResumeFailed, not as an error.
func (a *Authenticator) Resume(ctx context.Context, email string) (Outcome, error) {
	a.logger.Debug("loading session token", "namespace", a.namespace, "email", email)
	token, err := a.store.Get(a.namespace, email)
	if err != nil {
		return OutcomeNoSession, fmt.Errorf("failed to load session token: %w", err)
	}
	if token == "" {
		return OutcomeNoSession, nil
	}

	a.logger.Info("resuming Keep session, this may take a while", "email", email)
	if err := a.session.Resume(ctx, email, token); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return OutcomeResumeFailed, ctxErr
		}
		a.logger.Debug("resume failed", "error", err)
		return OutcomeResumeFailed, nil
	}
	return OutcomeResumed, nil
}

// Interactive asks for the password, logs in and stores the new token.
func (a *Authenticator) Interactive(ctx context.Context, email string) (Outcome, error) {
	password, err := a.credentials.Password(email)
	if err != nil {
		return OutcomeNoSession, fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return OutcomeNoSession, ErrNoPassword
	}

	a.logger.Info("authenticating, this may take a while", "email", email)
	if err := a.session.Login(ctx, email, password); err != nil {
		return OutcomeNoSession, fmt.Errorf("authentication failed: %w", err)
	}

	if err := a.store.Save(a.namespace, email, a.session.MasterToken()); err != nil {
		return OutcomeLoggedIn, fmt.Errorf("failed to save session token: %w", err)
	}
	a.logger.Info("authentication successful, session token saved", "email", email)
	return OutcomeLoggedIn, nil
}

// Logout forgets the stored token for email.
func (a *Authenticator) Logout(email string) error {
	if err := a.store.Delete(a.namespace, email); err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}
