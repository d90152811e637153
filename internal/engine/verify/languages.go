package verify

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language describes one supported generation target: its grammar for the
// syntax stage, the artifact file extension, and the interpreter used by
// the runtime load stage (empty when the language is compiled or no
// loader is sensible).
type Language struct {
	Name        string
	Extension   string
	Interpreter []string
	grammar     func() *sitter.Language
}

var languages = map[string]*Language{
	"python": {
		Name:        "python",
		Extension:   ".py",
		Interpreter: []string{"python3"},
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_python.Language())
		},
	},
	"go": {
		Name:      "go",
		Extension: ".go",
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_go.Language())
		},
	},
	"javascript": {
		Name:        "javascript",
		Extension:   ".js",
		Interpreter: []string{"node", "--check"},
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_javascript.Language())
		},
	},
	"typescript": {
		Name:      "typescript",
		Extension: ".ts",
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
	},
	"java": {
		Name:      "java",
		Extension: ".java",
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_java.Language())
		},
	},
	"rust": {
		Name:      "rust",
		Extension: ".rs",
		grammar: func() *sitter.Language {
			return sitter.NewLanguage(tree_sitter_rust.Language())
		},
	},
}

// LookupLanguage returns the registry entry for a language name.
func LookupLanguage(name string) (*Language, bool) {
	lang, ok := languages[name]
	return lang, ok
}

// SupportedLanguages lists the registered language names.
func SupportedLanguages() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	return names
}
