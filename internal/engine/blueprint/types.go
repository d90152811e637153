package blueprint

// Blueprint is the normalized record produced from one document, regardless
// of which input shape the document used. It is read-only after parsing.
type Blueprint struct {
	ModuleName   string
	Description  string
	References   []Reference
	ExternalDeps []string // package names that are not blueprint references
	Components   []Component
	Notes        []string
	Requirements []string
	Sections     map[string][]string
	RawText      string
	SourcePath   string
	Warnings     []string
}

// Reference is a declared dependency on another blueprint, as written in the
// source document. Resolution to a concrete blueprint happens later.
type Reference struct {
	TargetPath string
	Items      []ImportedItem
}

// ImportedItem names a symbol imported from a referenced blueprint, with an
// optional rename.
type ImportedItem struct {
	Name  string
	Alias string
}

type ComponentKind int

const (
	KindClass ComponentKind = iota
	KindFunction
	KindConstant
	KindTypeAlias
)

// Component is a structural signature declared by the structured shape.
type Component struct {
	Kind    ComponentKind
	Name    string
	Base    string // optional base class
	Methods []Method
	Type    string // optional type for constants
	Value   string // for constants and type aliases
}

// Method is a function or method signature.
type Method struct {
	Name       string
	Params     string
	Return     string
	Async      bool
	Decorators []string
}

// HasReference reports whether the blueprint declares a reference whose
// target resolves through the given written path.
func (b *Blueprint) HasReference(targetPath string) bool {
	for _, ref := range b.References {
		if ref.TargetPath == targetPath {
			return true
		}
	}
	return false
}

// AsyncComponentFunctions returns the names of functions and methods whose
// signatures are declared async.
func (b *Blueprint) AsyncComponentFunctions() map[string]bool {
	async := make(map[string]bool)
	for _, comp := range b.Components {
		for _, m := range comp.Methods {
			if m.Async {
				async[m.Name] = true
			}
		}
	}
	return async
}

// SyncComponentFunctions returns declared function/method names that are
// explicitly not async.
func (b *Blueprint) SyncComponentFunctions() map[string]bool {
	sync := make(map[string]bool)
	for _, comp := range b.Components {
		for _, m := range comp.Methods {
			if !m.Async {
				sync[m.Name] = true
			}
		}
	}
	return sync
}
