package verify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

func testVerifier(opts Options) *Verifier {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVerifier(opts, logger)
}

func pythonVerifier() *Verifier {
	return testVerifier(Options{Language: "python"})
}

func testProject(root *blueprint.Blueprint, deps ...*blueprint.Blueprint) *graph.ResolvedProject {
	p := &graph.ResolvedProject{
		Root:         root,
		Dependencies: make(map[string]*blueprint.Blueprint),
	}
	for _, dep := range deps {
		p.Dependencies[dep.ModuleName] = dep
	}
	return p
}

func TestVerify_SyntaxFailureIsFailFast(t *testing.T) {
	bp := &blueprint.Blueprint{ModuleName: "api.tasks"}
	results := pythonVerifier().Verify(context.Background(),
		"def broken(:\n    pass\n", bp, testProject(bp))

	if len(results) != 1 {
		t.Fatalf("results = %d, want exactly 1 after syntax failure", len(results))
	}
	if results[0].Success || results[0].Kind != KindSyntax {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Line == 0 {
		t.Error("expected a line number on the syntax failure")
	}
}

func TestVerify_CleanSourcePassesAllStages(t *testing.T) {
	user := &blueprint.Blueprint{ModuleName: "models.user"}
	bp := &blueprint.Blueprint{
		ModuleName: "api.tasks",
		References: []blueprint.Reference{
			{TargetPath: "@.models.user", Items: []blueprint.ImportedItem{{Name: "User"}}},
		},
	}

	source := "from models.user import User\n\n\nclass TaskService:\n    def create(self, user: User) -> None:\n        pass\n"
	results := pythonVerifier().Verify(context.Background(), source, bp, testProject(bp, user))

	if Failed(results) {
		t.Fatalf("expected success, got %+v", results)
	}
	if len(results) != 7 {
		t.Errorf("results = %d, want all 7 stages", len(results))
	}
}

func TestVerify_UnknownImport(t *testing.T) {
	bp := &blueprint.Blueprint{ModuleName: "api.tasks"}
	results := pythonVerifier().Verify(context.Background(),
		"import numpyx\n", bp, testProject(bp))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindImportUnresolved {
		t.Errorf("result = %+v", last)
	}
	if !strings.Contains(last.Message, "numpyx") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestVerify_DeclaredThirdPartyAccepted(t *testing.T) {
	bp := &blueprint.Blueprint{
		ModuleName:   "api.tasks",
		ExternalDeps: []string{"fastapi"},
	}
	source := "from fastapi import FastAPI\n\napp = FastAPI()\n"
	results := pythonVerifier().Verify(context.Background(), source, bp, testProject(bp))
	if Failed(results) {
		t.Errorf("expected success, got %+v", results)
	}
}

func TestVerify_RelativeImportFailsConformance(t *testing.T) {
	user := &blueprint.Blueprint{ModuleName: "models.user"}
	bp := &blueprint.Blueprint{
		ModuleName: "api.tasks",
		References: []blueprint.Reference{{TargetPath: "@.models.user"}},
	}

	results := pythonVerifier().Verify(context.Background(),
		"from .models import user\n", bp, testProject(bp, user))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindDependencyConformance {
		t.Errorf("result = %+v", last)
	}
}

func TestVerify_MissingDeclaredSymbol(t *testing.T) {
	user := &blueprint.Blueprint{ModuleName: "models.user"}
	bp := &blueprint.Blueprint{
		ModuleName: "api.tasks",
		References: []blueprint.Reference{
			{TargetPath: "@.models.user", Items: []blueprint.ImportedItem{{Name: "User"}}},
		},
	}

	results := pythonVerifier().Verify(context.Background(),
		"from models.user import Role\n", bp, testProject(bp, user))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindDependencyConformance {
		t.Fatalf("result = %+v", last)
	}
	if !strings.Contains(last.Message, "User") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestVerify_AliasMismatch(t *testing.T) {
	user := &blueprint.Blueprint{ModuleName: "models.user"}
	bp := &blueprint.Blueprint{
		ModuleName: "api.tasks",
		References: []blueprint.Reference{
			{TargetPath: "@.models.user", Items: []blueprint.ImportedItem{{Name: "Role", Alias: "UserRole"}}},
		},
	}

	results := pythonVerifier().Verify(context.Background(),
		"from models.user import Role\n", bp, testProject(bp, user))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindDependencyConformance {
		t.Fatalf("result = %+v", last)
	}
	if !strings.Contains(last.Message, "Role as UserRole") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestVerify_KnownSymbolWithoutImport(t *testing.T) {
	bp := &blueprint.Blueprint{ModuleName: "api.app", ExternalDeps: []string{"fastapi"}}
	results := pythonVerifier().Verify(context.Background(),
		"app = FastAPI()\n", bp, testProject(bp))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindMissingThirdParty {
		t.Fatalf("result = %+v", last)
	}
	if !strings.Contains(last.Message, "FastAPI") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestVerify_AsyncDeclarationMismatch(t *testing.T) {
	bp := &blueprint.Blueprint{
		ModuleName: "svc.worker",
		Components: []blueprint.Component{
			{
				Kind: blueprint.KindClass,
				Name: "Worker",
				Methods: []blueprint.Method{
					{Name: "fetch", Async: true},
				},
			},
		},
	}

	results := pythonVerifier().Verify(context.Background(),
		"class Worker:\n    def fetch(self):\n        pass\n", bp, testProject(bp))

	last := results[len(results)-1]
	if last.Success || last.Kind != KindAsyncMisuse {
		t.Fatalf("result = %+v", last)
	}
	if !strings.Contains(last.Message, "fetch") {
		t.Errorf("message = %q", last.Message)
	}
}

func TestVerify_RuntimeLoadDisabledWarns(t *testing.T) {
	bp := &blueprint.Blueprint{ModuleName: "solo"}
	results := pythonVerifier().Verify(context.Background(), "x = 1\n", bp, testProject(bp))

	last := results[len(results)-1]
	if !last.Success || last.Kind != KindRuntimeLoad {
		t.Fatalf("result = %+v", last)
	}
	if len(last.Warnings) == 0 {
		t.Error("expected a skip warning")
	}
}

func TestExpectedImports(t *testing.T) {
	user := &blueprint.Blueprint{ModuleName: "models.user"}
	base := &blueprint.Blueprint{ModuleName: "models.base"}
	bp := &blueprint.Blueprint{
		ModuleName: "api.tasks",
		References: []blueprint.Reference{
			{TargetPath: "@.models.user", Items: []blueprint.ImportedItem{
				{Name: "User"},
				{Name: "Role", Alias: "UserRole"},
			}},
			{TargetPath: "@.models.base"},
			{TargetPath: "@.ghost"},
		},
	}

	got := ExpectedImports(bp, testProject(bp, user, base), "python")
	want := []string{
		"from models.user import User, Role as UserRole",
		"import models.base",
	}
	if len(got) != len(want) {
		t.Fatalf("expected imports = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractImports_Go(t *testing.T) {
	source := "package main\n\nimport (\n\t\"fmt\"\n\tsitter \"github.com/tree-sitter/go-tree-sitter\"\n)\n\nimport \"os\"\n"
	imports, ok := ExtractImports(source, "go")
	if !ok {
		t.Fatal("go extraction unsupported")
	}
	if len(imports) != 3 {
		t.Fatalf("imports = %+v", imports)
	}
	if imports[0].Module != "fmt" || imports[1].Module != "github.com/tree-sitter/go-tree-sitter" || imports[2].Module != "os" {
		t.Errorf("imports = %+v", imports)
	}
}
