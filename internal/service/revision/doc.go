// Package revision drives flashcard revision sessions: it owns the session
// state machine, orchestrates the spaced repetition scheduler against the
// stores, and appends the review history. Sessions are in-memory and
// ephemeral; review records and card scheduling state are the durable output.
package revision
