// Package token adapts the tiktoken encoder for before/after token measurement.
package token

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/specpress/specpress/internal/errors"
)

// DefaultEncoding is the encoding used for all measurements (GPT-4 family).
const DefaultEncoding = "cl100k_base"

var (
	encoder     *tiktoken.Tiktoken
	encoderOnce sync.Once
	encoderErr  error
)

func initEncoder() error {
	encoderOnce.Do(func() {
		encoder, encoderErr = tiktoken.GetEncoding(DefaultEncoding)
	})
	return encoderErr
}

// Count returns the number of tokens in text. Empty text counts as zero.
// An encoder failure surfaces as a Validation error wrapping the cause.
func Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := initEncoder(); err != nil {
		return 0, errors.NewValidationCause("failed to count tokens", err)
	}
	return len(encoder.Encode(text, nil, nil)), nil
}

// Estimate returns a rough token count without the encoder, at roughly one
// token per four characters. Non-empty text estimates to at least one token.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// Ratio computes the fraction of tokens removed: (original - compressed) / original.
// Original must be positive and compressed must be within [0, original].
func Ratio(original, compressed int) (float64, error) {
	if original <= 0 {
		return 0, errors.NewValidation("original token count must be positive")
	}
	if compressed < 0 {
		return 0, errors.NewValidation("compressed token count cannot be negative")
	}
	if compressed > original {
		return 0, errors.NewValidation("compressed token count cannot exceed original")
	}
	return float64(original-compressed) / float64(original), nil
}
