package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var fenceOpen = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*")

// StripCodeFence removes markdown code fence markers that LLMs like to wrap
// JSON in (```json ... ``` or bare ```), then trims surrounding whitespace.
func StripCodeFence(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseAIJSON decodes a single JSON value from LLM output after stripping
// code fences. Surrounding prose, trailing values and type mismatches are
// rejected; callers get an error instead of a partially populated target.
func ParseAIJSON(input string, target interface{}) error {
	cleaned := StripCodeFence(input)
	if cleaned == "" {
		return fmt.Errorf("empty input")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON %q: %w", Truncate(cleaned, 100), err)
	}

	// Exactly one value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected trailing content after JSON value: %q", Truncate(cleaned, 100))
	}

	return nil
}

// CompactJSON strips insignificant whitespace, mostly for log lines
func CompactJSON(input string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(input)); err != nil {
		return input
	}
	return buf.String()
}

// Truncate shortens s to at most maxLen runes, marking the cut with "..."
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
