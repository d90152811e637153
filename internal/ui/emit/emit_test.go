package emit

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blueprints/internal/core/errors"
	"blueprints/internal/engine/blueprint"
)

func testEmitter(language string, force bool) *Emitter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEmitter(language, force, logger)
}

func TestWriteArtifact_BesideDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "models", "user.md")
	if err := os.MkdirAll(filepath.Dir(doc), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(doc, []byte("# models.user\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bp := &blueprint.Blueprint{ModuleName: "models.user", SourcePath: doc}
	path, err := testEmitter("python", false).WriteArtifact(bp, "class User: ...\n")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if path != filepath.Join(dir, "models", "user.py") {
		t.Errorf("path = %q", path)
	}
	content, err := os.ReadFile(path)
	if err != nil || string(content) != "class User: ...\n" {
		t.Errorf("content = %q, err = %v", content, err)
	}
}

func TestWriteArtifact_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "user.md")
	artifact := filepath.Join(dir, "user.py")
	if err := os.WriteFile(artifact, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	bp := &blueprint.Blueprint{ModuleName: "models.user", SourcePath: doc}
	_, err := testEmitter("python", false).WriteArtifact(bp, "replacement")
	if !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	if _, err := testEmitter("python", true).WriteArtifact(bp, "replacement"); err != nil {
		t.Fatalf("force overwrite failed: %v", err)
	}
	content, _ := os.ReadFile(artifact)
	if string(content) != "replacement" {
		t.Errorf("content = %q", content)
	}
}

func TestWritePackageMarkers(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "models", "auth", "user.py")
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		t.Fatal(err)
	}

	written, err := testEmitter("python", false).WritePackageMarkers([]string{artifact}, dir)
	if err != nil {
		t.Fatalf("markers failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v, want markers for models and models/auth", written)
	}
	for _, marker := range []string{
		filepath.Join(dir, "models", "__init__.py"),
		filepath.Join(dir, "models", "auth", "__init__.py"),
	} {
		if _, err := os.Stat(marker); err != nil {
			t.Errorf("missing marker %s", marker)
		}
	}
}

func TestWritePackageMarkers_NonPython(t *testing.T) {
	written, err := testEmitter("go", false).WritePackageMarkers([]string{"x.go"}, ".")
	if err != nil || written != nil {
		t.Errorf("go markers = %v, err = %v", written, err)
	}
}

func TestWriteMakefile(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "main.md")
	bp := &blueprint.Blueprint{ModuleName: "main", SourcePath: doc}

	path, err := testEmitter("python", false).WriteMakefile(bp, []string{"fastapi", "fastapi", "uvicorn"}, dir)
	if err != nil {
		t.Fatalf("makefile failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(content)
	if !strings.Contains(text, "pip install fastapi uvicorn") {
		t.Errorf("install target = %q", text)
	}
	if !strings.Contains(text, "python3 main.py") {
		t.Errorf("run target = %q", text)
	}
}
