// Package ollama wraps a local Ollama endpoint for the two optional LLM
// features: rewriting narration text into short-form style before
// synthesis, and generating mermaid diagram sources for timed overlays.
// Both degrade cleanly: callers treat errors here as "proceed without".
package ollama
