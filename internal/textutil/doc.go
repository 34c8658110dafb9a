// Package textutil holds the small text helpers the pipeline leans on:
// deriving a job title from the opening of a narration, sanitizing titles
// into filesystem-safe names, and fingerprinting narration text so the
// daemon can flag near-duplicate submissions.
package textutil
