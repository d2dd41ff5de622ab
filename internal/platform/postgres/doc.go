// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles query execution and data mapping between domain entities and
// database records, and embeds the goose migrations for the schema.
//
// Memory state and answer embeddings are stored as JSONB documents on the
// cards table. Statistics are maintained with single-statement upserts so
// concurrent reviews never lose increments.
package postgres
