// Package database provides SQLite connectivity and schema migrations.
//
// The database is the durable record for domain events and device
// mappings. It runs in WAL mode with a single-writer connection pool:
// concurrent appends from the ingestion pipeline and the HTTP API
// serialise on the pool while analytics reads proceed against the WAL
// snapshot.
//
// Migrations are embedded into the binary (see the migrations package)
// and applied at startup, tracked in the schema_migrations table.
package database
