package conversation

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/fxpyramid/chatapp/utils"
)

// TokenCounter estimates how many tokens a piece of text costs.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with the real BPE encoding for a model.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter resolves the encoding registered for model.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding for model: %w", err)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter approximates token counts without an encoding table:
// ASCII text runs about four characters per token, non-ASCII text (CJK,
// Cyrillic, emoji) about one character per token.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight++
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}

// NewCounter returns a tiktoken-backed counter for model, degrading to the
// heuristic when no encoding can be loaded.
func NewCounter(model string, logger utils.Logger) TokenCounter {
	counter, err := NewTiktokenCounter(model)
	if err != nil {
		logger.Warn("No token encoding available, using heuristic", "model", model, "error", err)
		return HeuristicCounter{}
	}
	return counter
}
