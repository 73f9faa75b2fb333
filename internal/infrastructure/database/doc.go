// Package database opens the SQLite store behind the event journal and
// applies its schema migrations.
//
// The default ":memory:" journal lives on one pinned connection and is
// gone when the process exits. Point database.path at a file to keep it
// between runs.
//
//	db, err := database.Open(database.Config{Path: database.MemoryPath, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
