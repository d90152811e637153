package blueprint

import (
	"testing"
)

func TestParse_StructuredShape(t *testing.T) {
	content := `# api.tasks
Task CRUD endpoints.

deps: @.models.user[User, Role as UserRole]; fastapi; sqlalchemy

TaskService(BaseService):
- create(self, payload: dict) -> Task
- async fetch_all(self) -> list[Task]

validate_payload(payload: dict) -> bool

MAX_TASKS: int = 100
type TaskList = list[Task]
notes: keep handlers thin
`

	p := NewParser()
	bp, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if bp.ModuleName != "api.tasks" {
		t.Errorf("module name = %q", bp.ModuleName)
	}
	if bp.Description != "Task CRUD endpoints." {
		t.Errorf("description = %q", bp.Description)
	}

	if len(bp.References) != 1 {
		t.Fatalf("references = %d, want 1", len(bp.References))
	}
	ref := bp.References[0]
	if ref.TargetPath != "@.models.user" {
		t.Errorf("reference target = %q", ref.TargetPath)
	}
	if len(ref.Items) != 2 || ref.Items[0].Name != "User" ||
		ref.Items[1].Name != "Role" || ref.Items[1].Alias != "UserRole" {
		t.Errorf("reference items = %+v", ref.Items)
	}

	if len(bp.ExternalDeps) != 2 || bp.ExternalDeps[0] != "fastapi" || bp.ExternalDeps[1] != "sqlalchemy" {
		t.Errorf("external deps = %v", bp.ExternalDeps)
	}

	if len(bp.Components) != 4 {
		t.Fatalf("components = %d, want 4", len(bp.Components))
	}

	class := bp.Components[0]
	if class.Kind != KindClass || class.Name != "TaskService" || class.Base != "BaseService" {
		t.Errorf("class = %+v", class)
	}
	if len(class.Methods) != 2 {
		t.Fatalf("class methods = %d, want 2", len(class.Methods))
	}
	if class.Methods[0].Name != "create" || class.Methods[0].Return != "Task" {
		t.Errorf("method = %+v", class.Methods[0])
	}
	if !class.Methods[1].Async || class.Methods[1].Name != "fetch_all" {
		t.Errorf("async method = %+v", class.Methods[1])
	}

	fn := bp.Components[1]
	if fn.Kind != KindFunction || fn.Name != "validate_payload" {
		t.Errorf("function = %+v", fn)
	}

	constant := bp.Components[2]
	if constant.Kind != KindConstant || constant.Name != "MAX_TASKS" ||
		constant.Type != "int" || constant.Value != "100" {
		t.Errorf("constant = %+v", constant)
	}

	alias := bp.Components[3]
	if alias.Kind != KindTypeAlias || alias.Name != "TaskList" || alias.Value != "list[Task]" {
		t.Errorf("type alias = %+v", alias)
	}

	if len(bp.Notes) != 1 || bp.Notes[0] != "keep handlers thin" {
		t.Errorf("notes = %v", bp.Notes)
	}
}

func TestParse_NaturalShape(t *testing.T) {
	content := `# models.user
User domain model with role assignments.

Dependencies:
- ./models/base[Base], sqlalchemy
- pydantic

Requirements:
- Passwords are hashed before storage.

Implementation Notes:
- Keep the ORM session out of the model layer.
`

	p := NewParser()
	bp, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if bp.ModuleName != "models.user" {
		t.Errorf("module name = %q", bp.ModuleName)
	}
	if len(bp.References) != 1 || bp.References[0].TargetPath != "./models/base" {
		t.Errorf("references = %+v", bp.References)
	}
	if len(bp.References[0].Items) != 1 || bp.References[0].Items[0].Name != "Base" {
		t.Errorf("reference items = %+v", bp.References[0].Items)
	}
	if len(bp.ExternalDeps) != 2 {
		t.Errorf("external deps = %v", bp.ExternalDeps)
	}
	if len(bp.Requirements) != 1 {
		t.Errorf("requirements = %v", bp.Requirements)
	}
	if got := bp.Sections["Implementation Notes"]; len(got) != 1 {
		t.Errorf("sections = %v", bp.Sections)
	}
}

func TestParse_MissingHeader(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("no header here\njust text\n")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParse_LenientWarnings(t *testing.T) {
	content := `# broken.doc
Survives malformed fragments.

deps: @.models.user[User

- orphan(x) -> y
`
	p := NewParser()
	bp, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(bp.References) != 1 || bp.References[0].TargetPath != "@.models.user" {
		t.Errorf("references = %+v", bp.References)
	}
	if len(bp.Warnings) < 2 {
		t.Errorf("expected warnings for bad bracket and orphan method, got %v", bp.Warnings)
	}
}

func TestParse_RelativeReferencePrefixes(t *testing.T) {
	content := `# pkg.mod
Something.

deps: ../shared/util; ./sibling; plain_package
`
	p := NewParser()
	bp, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(bp.References) != 2 {
		t.Fatalf("references = %+v", bp.References)
	}
	if len(bp.ExternalDeps) != 1 || bp.ExternalDeps[0] != "plain_package" {
		t.Errorf("external deps = %v", bp.ExternalDeps)
	}
}
