package askengine

import "embed"

// Migrations holds the versioned SQLite schema applied by NewStore.
//
//go:embed migrations/*.sql
var Migrations embed.FS
