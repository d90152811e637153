package retry

import (
	"context"
	"log/slog"
	"time"

	"blueprints/internal/engine/assemble"
	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
	"blueprints/internal/engine/oracle"
	"blueprints/internal/engine/prompt"
	"blueprints/internal/engine/verify"
	"blueprints/internal/shared/observability"
)

// Outcome is the result of one module's generate/verify loop. Success is
// not guaranteed: the last attempt's source and results are always
// returned so the caller can keep or discard flagged output.
type Outcome struct {
	Source   string
	Results  []verify.Result
	Attempts int
}

// Controller drives the generate -> verify -> regenerate-with-feedback
// state machine, bounded by the retry budget.
type Controller struct {
	oracle   oracle.Client
	verifier *verify.Verifier
	builder  *prompt.Builder
	budget   int
	logger   *slog.Logger
}

// NewController builds a controller with the given retry budget: the
// number of extra attempts allowed after the first one fails.
func NewController(client oracle.Client, verifier *verify.Verifier, builder *prompt.Builder, budget int, logger *slog.Logger) *Controller {
	if budget < 0 {
		budget = 0
	}
	return &Controller{
		oracle:   client,
		verifier: verifier,
		builder:  builder,
		budget:   budget,
		logger:   logger,
	}
}

// Generate runs the loop for one module. Every retry is a whole-file
// regeneration from a feedback prompt; no patching. An oracle error ends
// the loop immediately with whatever was produced so far.
func (c *Controller) Generate(ctx context.Context, bp *blueprint.Blueprint, project *graph.ResolvedProject, fragments []assemble.Fragment) (Outcome, error) {
	start := time.Now()
	defer func() {
		observability.GenerationDuration.WithLabelValues(c.builder.Language).Observe(time.Since(start).Seconds())
	}()

	outcome := Outcome{}
	nextPrompt := c.builder.Generation(bp, fragments)

	for attempt := 0; attempt <= c.budget; attempt++ {
		outcome.Attempts = attempt + 1
		observability.GenerationAttemptsTotal.Inc()

		source, err := c.oracle.Generate(ctx, nextPrompt)
		if err != nil {
			return outcome, err
		}
		outcome.Source = source
		outcome.Results = c.verifier.Verify(ctx, source, bp, project)

		if !verify.Failed(outcome.Results) {
			return outcome, nil
		}
		if attempt == c.budget {
			break
		}

		c.logger.Debug("verification failed, regenerating",
			"module", bp.ModuleName,
			"attempt", attempt+1,
			"failures", len(outcome.Results))
		expected := verify.ExpectedImports(bp, project, c.builder.Language)
		nextPrompt = c.builder.Feedback(bp, source, outcome.Results, expected)
	}

	c.logger.Warn("retry budget exhausted, keeping flagged source",
		"module", bp.ModuleName, "attempts", outcome.Attempts)
	return outcome, nil
}
