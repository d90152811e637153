package oracle

import (
	"context"
	"regexp"
	"strings"
)

// Client is the external code-generation collaborator. It receives a
// self-contained prompt and returns opaque source text. Retries on
// verification failure happen one level up; a Generate error is fatal
// for the current attempt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var codeFence = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n(.*?)```")

// ExtractCode pulls source text out of an oracle reply. The first fenced
// block wins; a reply without fences is returned as-is.
func ExtractCode(reply string) string {
	if match := codeFence.FindStringSubmatch(reply); match != nil {
		return strings.TrimRight(match[1], "\n") + "\n"
	}
	return strings.TrimSpace(reply) + "\n"
}
