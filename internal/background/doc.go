// Package background chooses a backdrop clip from a shared pool and plans
// how it is trimmed or looped to match the narration duration. The pool is
// read-only and safely shared across concurrent jobs; per-job randomness is
// isolated in each Selector so a fixed seed reproduces the same choice.
package background
