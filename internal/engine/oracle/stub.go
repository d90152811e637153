package oracle

import (
	"context"
	"fmt"
	"regexp"
)

var moduleHeader = regexp.MustCompile(`(?m)^# ([\w./-]+)`)

// StubClient echoes a commented skeleton instead of calling an oracle.
// It backs --dry-run and offline tests.
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

func (s *StubClient) Generate(_ context.Context, prompt string) (string, error) {
	// The module's own header comes after the dependency context, so the
	// last header in the prompt names the module being generated.
	module := "module"
	if matches := moduleHeader.FindAllStringSubmatch(prompt, -1); len(matches) > 0 {
		module = matches[len(matches)-1][1]
	}
	return fmt.Sprintf("\"\"\"Skeleton for %s. Generated offline.\"\"\"\n", module), nil
}
