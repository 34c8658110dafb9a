package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const rewritePrompt = `You rewrite technical narration for short-form vertical video.
Keep every factual claim. Use short punchy sentences. No emoji, no hashtags,
no stage directions. Return JSON only: {"text": "<rewritten narration>"}`

const diagramPrompt = `You illustrate technical narration with mermaid diagrams.
Given a narration, propose at most three small diagrams that clarify it.
For each, give the mermaid source and the portion of the narration it covers
as fractions of the total duration (0.0 to 1.0). Return JSON only:
{"diagrams":[{"mermaid":"<source>","start":0.1,"end":0.4}]}`

// RewriteNarration asks the model to restyle narration text. The original
// text is returned unchanged only by the caller's fallback, never here.
func (c *Client) RewriteNarration(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("ollama rewrite: text required")
	}
	content, err := c.Generate(ctx, rewritePrompt, text, true)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return "", fmt.Errorf("ollama rewrite: parse payload: %w", err)
	}
	rewritten := strings.TrimSpace(parsed.Text)
	if rewritten == "" {
		return "", errors.New("ollama rewrite: empty rewritten text")
	}
	return rewritten, nil
}

// Diagram is one proposed overlay: mermaid source plus the narration window
// it covers, as duration fractions.
type Diagram struct {
	Mermaid string  `json:"mermaid"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// GenerateDiagrams asks the model for timed mermaid diagrams illustrating
// the narration. Windows are clamped to [0,1] and diagrams with inverted or
// empty windows are dropped.
func (c *Client) GenerateDiagrams(ctx context.Context, text string) ([]Diagram, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("ollama diagrams: text required")
	}
	content, err := c.Generate(ctx, diagramPrompt, text, true)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Diagrams []Diagram `json:"diagrams"`
	}
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("ollama diagrams: parse payload: %w", err)
	}

	diagrams := make([]Diagram, 0, len(parsed.Diagrams))
	for _, d := range parsed.Diagrams {
		d.Mermaid = strings.TrimSpace(d.Mermaid)
		if d.Mermaid == "" {
			continue
		}
		if d.Start < 0 {
			d.Start = 0
		}
		if d.End > 1 {
			d.End = 1
		}
		if d.End <= d.Start {
			continue
		}
		diagrams = append(diagrams, d)
	}
	return diagrams, nil
}
