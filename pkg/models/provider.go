// Package models contains shared data models used across the BrandBeacon codebase.
package models

import (
	"context"
	"time"
)

// Provider is the core interface every answer-source integration must implement.
// Never call a specific provider client directly — always inject this interface.
type Provider interface {
	// Ask sends a single consumer question and returns the provider's answer.
	Ask(ctx context.Context, question string) (Answer, error)
	// Name returns the surface identifier stored with results: "chatgpt",
	// "claude", "gemini", or "perplexity".
	Name() string
	// Timeout returns the per-call deadline this provider should be held to.
	Timeout() time.Duration
}

// Answer is a single provider response with token accounting.
type Answer struct {
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used"`
}

// TextGenerator is the narrative collaborator used by query generation and
// the analytics engine. Callers must tolerate errors by falling back to
// template-only output.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
