// Package history persists pipeline run outcomes in a SQLite database under
// the log directory, backing the CLI history listing.
package history
