package utils

import (
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor prepares extracted message text for scoring. Risk checks
// cap payload size, and mixed-encoding mail bodies are routinely invalid
// UTF-8.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a TextProcessor.
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{logger: logger}
}

// Truncate limits text to maxSize bytes without splitting a UTF-8 sequence.
// maxSize <= 0 means unlimited.
func (tp *TextProcessor) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)))

	return truncated + "\n[... content truncated ...]"
}

// Sanitize drops invalid UTF-8 sequences and normalizes the rest to NFC so
// visually identical strings compare equal downstream.
func (tp *TextProcessor) Sanitize(text string) string {
	if !utf8.ValidString(text) {
		result := make([]rune, 0, len(text))
		for i, r := range text {
			if r == utf8.RuneError {
				if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
					continue
				}
			}
			result = append(result, r)
		}
		text = string(result)
	}
	return norm.NFC.String(text)
}

// Process truncates then sanitizes in one step.
func (tp *TextProcessor) Process(text string, maxSize int) string {
	return tp.Sanitize(tp.Truncate(text, maxSize))
}
