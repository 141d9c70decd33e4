package store

// MigrateURL exposes migrateURL for tests.
var MigrateURL = migrateURL
