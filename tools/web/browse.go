package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
}

// Browse returns the visible text of the page at rawURL, whitespace
// collapsed and truncated to the configured length.
func (b *Browser) Browse(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	body, closer, err := b.fetch(ctx, target)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	text, err := PageText(body)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Successfully browsed %s\n\nContent:\n%s", strings.TrimSpace(rawURL), Truncate(text, b.maxText)), nil
}

// PageText extracts the text content of an HTML document, dropping script,
// style, and other non-visible elements. Text nodes and source lines are
// trimmed, runs of two or more spaces split phrases, and the phrases are
// joined by single spaces.
func PageText(r io.Reader) (string, error) {
	var raw strings.Builder
	tokenizer := html.NewTokenizer(r)
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return collapse(raw.String()), nil
			}
			return "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skipTags[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipTags[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				raw.Write(tokenizer.Text())
				raw.WriteByte('\n')
			}
		}
	}
}

func collapse(text string) string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}

// Truncate cuts text to max runes and marks the cut. max <= 0 disables it.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + truncated
}
