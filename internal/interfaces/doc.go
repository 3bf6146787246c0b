// Package interfaces documents the seams between the gkeep2notion packages.
//
// # Interface Categories
//
// ## Import
//
//   - Source: the items to import and label lookup (internal/importers/importer.go),
//     implemented by keep.Client
//   - Destination: page creation (internal/importers/importer.go), implemented
//     by notion.Client and importers.DryRun
//   - Recorder: told about every created page (internal/importers/importer.go),
//     implemented by audit.Run
//   - Snapshot: keeps rendered pages of a dry run (internal/importers/dryrun.go),
//     implemented by audit.Snapshotter
//
// ## Authentication
//
//   - Session: password login and token resume (internal/auth/authenticator.go)
//   - TokenStore: encrypted session token storage (internal/auth/authenticator.go),
//     implemented by tokenstore.Store
//   - CredentialProvider: asks for the password (internal/auth/authenticator.go),
//     implemented by auth.TerminalPrompt and by fakes in tests
//
// ## Transport
//
//   - Throttle: spaces Notion writes (internal/notion/client.go), implemented
//     by ratelimit.Throttle
//
// # Adding a New Destination
//
// To send items somewhere other than Notion, implement Destination:
//
//	type MarkdownDestination struct {
//	    dir string
//	}
//
//	func (d *MarkdownDestination) CreatePage(ctx context.Context, page *notion.Page) error {
//	    // Write the page, then set page.ID so children can reference it
//	}
//
//	var _ importers.Destination = (*MarkdownDestination)(nil)
//
// and select it in internal/cli/import.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
