package llm

import (
	"context"
	"errors"
)

// Generator abstracts hosted text-generation providers for essay drafting.
type Generator interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// GenerateEssay sends the prompt and returns the raw essay text.
	GenerateEssay(ctx context.Context, req Request) (string, error)
}

// Request captures the inputs for one generation call.
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       float32
	MaxWords          int
}

// ErrUnavailable signals that a provider cannot serve requests at all
// (missing key, unreachable endpoint). Callers move on to the next provider.
var ErrUnavailable = errors.New("text generation provider unavailable")
