package defn

import "sync"

// Module groups declarations and carries their default compiler
// configuration. Declarations attach with WithModule; listing skips
// private members.
type Module struct {
	mu         sync.Mutex
	name       string
	config     CallConfig
	defs       []*Def
	transforms []*Transform
}

// NewModule creates a named module. WithCompiler and WithCompilerOptions
// become the defaults for every member declaration.
func NewModule(name string, opts ...Option) *Module {
	s := applyOptions(opts)
	return &Module{
		name:   name,
		config: CallConfig{Compiler: s.compiler, Options: s.options},
	}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Compiler returns the module's default compiler name, if any.
func (m *Module) Compiler() string { return m.config.Compiler }

func (m *Module) addDef(d *Def) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = append(m.defs, d)
}

func (m *Module) addTransform(t *Transform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transforms = append(m.transforms, t)
}

// Defs lists the module's public graph-building definitions in
// declaration order.
func (m *Module) Defs() []*Def {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Def, 0, len(m.defs))
	for _, d := range m.defs {
		if !d.private {
			out = append(out, d)
		}
	}
	return out
}

// Transforms lists the module's public transforms in declaration order.
func (m *Module) Transforms() []*Transform {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Transform, 0, len(m.transforms))
	for _, t := range m.transforms {
		if !t.private {
			out = append(out, t)
		}
	}
	return out
}
