// Package vision suggests inventory items from a kitchen photo. Suggestions
// are shown to the user and never stored on their own.
package vision

import (
	"context"
	"io"
)

// AnalysisPrompt is the prompt sent with every photo.
const AnalysisPrompt = `List every food or kitchen supply item you can see in this photo of a kitchen
shelf, cupboard, fridge or pantry. For each item provide: name, approximate
quantity with its unit, and any relevant notes (e.g. opened, nearly empty).
Respond in plain text, one item per line,
format: name | quantity | notes`

type VisionAnalyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*AnalysisResult, error)
}

type AnalysisResult struct {
	Items       []DetectedItem
	RawResponse string
}

type DetectedItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}
