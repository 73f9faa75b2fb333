// Package migrations embeds the event journal schema into the binary.
//
// The journal starts empty on every boot when the database is in memory,
// so the migrations always run from scratch there.
package migrations

import "embed"

// FS holds every *.sql file in this directory at the root of the FS.
//
//go:embed *.sql
var FS embed.FS
