package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

var pythonDefRe = regexp.MustCompile(`^(\s*)(async\s+)?def\s+(\w+)\s*\(`)

// checkAsyncUsage compares generated function definitions against the
// asynchrony declared in the blueprint's component signatures. The check
// is textual and python-only; anything it cannot decide passes through.
func (v *Verifier) checkAsyncUsage(_ context.Context, source string, bp *blueprint.Blueprint, _ *graph.ResolvedProject) Result {
	if v.opts.Language != "python" {
		return Result{Success: true, Kind: KindAsyncMisuse}
	}

	declaredAsync := bp.AsyncComponentFunctions()
	declaredSync := bp.SyncComponentFunctions()
	if len(declaredAsync) == 0 && len(declaredSync) == 0 {
		return Result{Success: true, Kind: KindAsyncMisuse}
	}

	var problems []string
	for i, line := range strings.Split(source, "\n") {
		match := pythonDefRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		isAsync := match[2] != ""
		name := match[3]

		if declaredAsync[name] && !isAsync {
			problems = append(problems,
				fmt.Sprintf("line %d: %s is declared async but defined synchronous", i+1, name))
		}
		if declaredSync[name] && isAsync && !declaredAsync[name] {
			problems = append(problems,
				fmt.Sprintf("line %d: %s is declared synchronous but defined async", i+1, name))
		}
	}

	if len(problems) > 0 {
		return Result{
			Kind:    KindAsyncMisuse,
			Message: strings.Join(problems, "; "),
		}
	}
	return Result{Success: true, Kind: KindAsyncMisuse}
}
