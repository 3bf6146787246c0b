package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/gkeep2notion/internal/audit"
	"github.com/mrlokans/gkeep2notion/internal/auth"
	"github.com/mrlokans/gkeep2notion/internal/cli"
	"github.com/mrlokans/gkeep2notion/internal/importers"
	"github.com/mrlokans/gkeep2notion/internal/keep"
	"github.com/mrlokans/gkeep2notion/internal/notion"
	"github.com/mrlokans/gkeep2notion/internal/ratelimit"
	"github.com/mrlokans/gkeep2notion/internal/tokenstore"
)

// =============================================================================
// Source service
// =============================================================================

var _ importers.Source = (*keep.Client)(nil)
var _ auth.Session = (*keep.Client)(nil)

// =============================================================================
// Destination service
// =============================================================================

var _ importers.Destination = (*notion.Client)(nil)
var _ importers.Destination = (*importers.DryRun)(nil)
var _ notion.Throttle = (*ratelimit.Throttle)(nil)

// =============================================================================
// Credentials
// =============================================================================

var _ auth.TokenStore = (*tokenstore.Store)(nil)
var _ auth.CredentialProvider = (*auth.TerminalPrompt)(nil)

// =============================================================================
// Import history
// =============================================================================

var _ importers.Recorder = (*audit.Run)(nil)
var _ importers.Snapshot = (*audit.Snapshotter)(nil)

// =============================================================================
// Commands
// =============================================================================

var _ cli.Command = (*cli.ImportCommand)(nil)
var _ cli.Command = (*cli.LoginCommand)(nil)
var _ cli.Command = (*cli.LogoutCommand)(nil)
var _ cli.Command = (*cli.PreviewCommand)(nil)
var _ cli.Command = (*cli.HistoryCommand)(nil)
