// db/migrations/embed.go

package migrations

import "embed"

// Alle sql-bestanden als een bestandssysteem voor golang-migrate.
//
//go:embed *.sql
var SQLFiles embed.FS
