package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/gkeep2notion/internal/auth"
)

// LoginCommand signs in to Keep with a password and stores the session,
// replacing any stored one.
type LoginCommand struct {
	Common
	Email string
}

func NewLoginCommand() *LoginCommand {
	return &LoginCommand{}
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)

	cmd.addFlags(fs)
	fs.StringVarP(&cmd.Email, "email", "e", "", "Account to sign in (defaults to the config email)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sign in to Google Keep and store the session token.\n\n")
		fmt.Fprintf(os.Stderr, "Accounts with 2-step verification need an app password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *LoginCommand) Run(ctx context.Context) error {
	e, err := cmd.open()
	if err != nil {
		return err
	}
	defer e.Close()

	email := accountOf(cmd.Email, e)
	if email == "" {
		return fmt.Errorf("no account given, set email in %s or use --email", e.cfg.Path)
	}

	outcome, err := cmd.authenticator(e, cmd.keepClient()).Interactive(ctx, email)
	if err != nil {
		return err
	}
	if outcome == auth.OutcomeLoggedIn {
		cmd.printf("Signed in as %s, session saved\n", email)
	}
	return nil
}

// LogoutCommand forgets the stored Keep session.
type LogoutCommand struct {
	Common
	Email string
}

func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{}
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("logout", pflag.ContinueOnError)

	cmd.addFlags(fs)
	fs.StringVarP(&cmd.Email, "email", "e", "", "Account to sign out (defaults to the config email)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s logout [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete the stored Google Keep session token.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run(_ context.Context) error {
	e, err := cmd.open()
	if err != nil {
		return err
	}
	defer e.Close()

	email := accountOf(cmd.Email, e)
	if email == "" {
		return fmt.Errorf("no account given, set email in %s or use --email", e.cfg.Path)
	}
	if err := cmd.authenticator(e, nil).Logout(email); err != nil {
		return err
	}
	cmd.printf("Session for %s removed\n", email)
	return nil
}

func accountOf(flagValue string, e *env) string {
	if flagValue != "" {
		return flagValue
	}
	return e.cfg.Email
}
