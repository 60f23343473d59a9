// Package generation defines the boundary to external AI/LLM content
// collaborators. A Generator proposes flashcard candidates for a topic; the
// engine treats every candidate as untrusted text that only becomes a real
// flashcard through the normal creation path. This keeps content generation
// and scheduling independently testable and replaceable.
package generation
