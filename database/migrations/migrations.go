// Package migrations embeds the schema migrations for every supported database driver.
package migrations

import "embed"

// FS holds one directory per driver: oracle, postgres and sqlite3.
// Files follow the golang-migrate naming scheme: <version>_<name>.<up|down>.sql.
//
//go:embed oracle/*.sql postgres/*.sql sqlite3/*.sql
var FS embed.FS
