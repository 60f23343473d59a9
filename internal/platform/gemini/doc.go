// Package gemini implements the generation.Generator boundary using Google's
// Gemini API. The adapter owns prompt construction, retry with exponential
// backoff for transient API failures, and strict parsing of the model's JSON
// output into card candidates.
package gemini
