package app

import (
	"log/slog"
	"regexp"
	"strings"

	"blueprints/internal/data/insight"
	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// cachedAnalyzer infers dependency edges from blueprint prose: a module
// whose description, notes, or requirements mention another module's
// name by word boundary gets an inferred edge to it. Results are cached
// by content hash so unchanged blueprints skip the scan.
type cachedAnalyzer struct {
	cache  *insight.Cache
	logger *slog.Logger
}

func newCachedAnalyzer(cache *insight.Cache, logger *slog.Logger) *cachedAnalyzer {
	return &cachedAnalyzer{cache: cache, logger: logger}
}

func (c *cachedAnalyzer) InferEdges(blueprints []*blueprint.Blueprint) ([]graph.InferredEdge, error) {
	names := make([]string, 0, len(blueprints))
	for _, bp := range blueprints {
		names = append(names, bp.ModuleName)
	}

	var edges []graph.InferredEdge
	for _, bp := range blueprints {
		hash := insight.Key(bp.RawText)
		if cached, ok := c.cache.Get(hash); ok {
			edges = append(edges, cached...)
			continue
		}

		own := scanProse(bp, names)
		if err := c.cache.Put(hash, bp.ModuleName, own); err != nil {
			c.logger.Debug("insight cache write failed", "module", bp.ModuleName, "error", err)
		}
		edges = append(edges, own...)
	}
	return edges, nil
}

func scanProse(bp *blueprint.Blueprint, names []string) []graph.InferredEdge {
	var prose strings.Builder
	prose.WriteString(bp.Description)
	prose.WriteString("\n")
	prose.WriteString(strings.Join(bp.Notes, "\n"))
	prose.WriteString("\n")
	prose.WriteString(strings.Join(bp.Requirements, "\n"))
	text := prose.String()

	var edges []graph.InferredEdge
	for _, name := range names {
		if name == bp.ModuleName {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(text) {
			edges = append(edges, graph.InferredEdge{From: bp.ModuleName, To: name})
		}
	}
	return edges
}
