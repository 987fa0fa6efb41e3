// Package interfaces defines service contracts for FinaFlow
package interfaces

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"
)

// GeneratorClient is the external generator collaborator. The candidate it
// returns is untrusted: any shape, including a wrong envelope or missing
// required fields, must be expected by callers.
type GeneratorClient interface {
	// GenerateDashboard sends instructions to the generator, constrained to
	// the given output schema, and returns the raw JSON candidate.
	GenerateDashboard(ctx context.Context, instructions string, outputSchema *genai.Schema, temperature float32) (json.RawMessage, error)
}
