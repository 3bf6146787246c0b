// Package importers moves Keep items into a Notion page tree.
//
// # Flow
//
//	Source → Select(filter) → for each item:
//	    CategoryResolver (root → first label) → parsers (blocks) → Destination
//
// Two root pages are created first, one for notes and one for checklists.
// Each item goes under the category page named after its first label, or
// directly under its root when it has none. Category pages are created on
// first use and reused for the rest of the run.
//
// # Destinations
//
//   - *notion.Client: the real thing, throttled and batched
//   - *DryRun: assigns local IDs, optionally snapshotting each page as JSON
//
// # Example Usage
//
//	imp := importers.NewImporter(keepClient, notionClient, importers.Options{
//		RootID:      rootID,
//		NotesTitle:  "Notes",
//		TodosTitle:  "Todos",
//		ImportNotes: true,
//		ImportTodos: true,
//	}, logger)
//	imp.SetRecorder(run)
//	result, err := imp.Run(ctx, importers.Filter{Labels: importers.ParseLabels("Work, Home")})
package importers
