// Package repositories implements SQLite persistence for the offline video cache.
//
// Key Implementations:
//   - [VideoRepository] : the last fetched gallery in server order, plus locally generated
//     records prepended ahead of it
//
// Rows carry an integer position rather than relying on created_at, which the backend may
// leave null. Prepending takes the smallest position minus one, see [nextPosition].
package repositories
