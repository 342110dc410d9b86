// Package extract implements layered JSON extraction from model output.
//
// Transformation calls are asked to return a bare JSON object, but models
// routinely wrap the payload in a fenced code block or surround it with
// prose. Extraction applies an ordered list of pure parse layers and returns
// the first result that yields valid JSON.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// previewLimit bounds how much of the offending text a ParseError carries.
const previewLimit = 120

// Layer is one parse strategy. Layers are pure: same input, same output.
type Layer func(text string) (json.RawMessage, error)

// ParseError is returned when every layer fails. It carries a bounded preview
// of the offending text, never the full payload.
type ParseError struct {
	Preview string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no extraction layer produced valid JSON (preview: %q): %v", e.Preview, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Layers returns the ordered parse strategies: direct parse, fenced-block
// strip, bracket slice.
func Layers() []Layer {
	return []Layer{ParseDirect, ParseFenced, ParseBracketSlice}
}

// Extract applies the layers in order and returns the first valid JSON
// document, or a ParseError if every layer fails.
func Extract(text string) (json.RawMessage, error) {
	var lastErr error
	for _, layer := range Layers() {
		doc, err := layer(text)
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	return nil, &ParseError{Preview: preview(text), Cause: lastErr}
}

// ParseDirect parses the trimmed text as JSON with no cleanup.
func ParseDirect(text string) (json.RawMessage, error) {
	return parseCandidate(strings.TrimSpace(text))
}

// ParseFenced strips one leading and one trailing fenced code block marker
// (with an optional language tag) and parses the remainder.
func ParseFenced(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return nil, fmt.Errorf("no leading code fence")
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimLeft(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return parseCandidate(strings.TrimSpace(s))
}

// ParseBracketSlice locates the first '{' or '[' and the last matching '}' or
// ']' and parses the enclosed substring. Handles stray prose before and after
// the object.
func ParseBracketSlice(text string) (json.RawMessage, error) {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, closeCh := objStart, byte('}')
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start, closeCh = arrStart, ']'
	}
	if start < 0 {
		return nil, fmt.Errorf("no JSON bracket found")
	}

	end := strings.LastIndexByte(text, closeCh)
	if end <= start {
		return nil, fmt.Errorf("no closing bracket found")
	}
	return parseCandidate(text[start : end+1])
}

// parseCandidate validates that s is a complete JSON document and returns it
// compacted.
func parseCandidate(s string) (json.RawMessage, error) {
	if s == "" {
		return nil, fmt.Errorf("empty candidate")
	}
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("invalid JSON candidate")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, fmt.Errorf("compact candidate: %w", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit])
}
