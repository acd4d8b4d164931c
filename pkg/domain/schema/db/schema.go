package db

import "context"

// SchemaInterface represents the database schema.
type SchemaInterface interface {
	// Upgrade applies versions in the schema repository newer than the database.
	Upgrade(ctx context.Context) error

	// Version returns the current version of the schema in the database.
	//
	// It is 0 when no schema has been applied.
	Version(ctx context.Context) (int, error)

	// Context returns a context which is cancelled
	// when the schema in the database is older than the schema repository.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
