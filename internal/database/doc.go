// Package database owns the local sqlite file shared by the session store
// and the import history.
//
//	database/
//	├── database.go   # Connection setup and migrations
//	└── audit/        # Import runs and the pages they created
//
// Open the database once and hand db.DB to the repositories:
//
//	db, err := database.Open("./gkeep2notion.db", false)
//	runs := audit.NewRepository(db.DB)
//	store, err := tokenstore.New(db.DB, tokenstore.Config{})
package database
