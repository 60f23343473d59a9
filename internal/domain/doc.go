// Package domain contains the core entities of the revision engine:
// flashcards and their scheduling state, and the append-only review records
// derived views are computed from. Entities validate themselves; persistence
// and scheduling policy live elsewhere.
package domain
