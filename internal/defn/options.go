package defn

// settings collects everything the declaration options can set.
type settings struct {
	compiler string
	options  map[string]string
	module   *Module
	private  bool
}

// Option configures a definition, transform or module at declaration time.
type Option func(*settings)

// WithCompiler pins the compiler used for this declaration unless a call
// site overrides it.
func WithCompiler(name string) Option {
	return func(s *settings) {
		s.compiler = name
	}
}

// WithCompilerOptions supplies compiler options for this declaration.
// Options merge across configuration levels; the nearer level wins per
// key.
func WithCompilerOptions(options map[string]string) Option {
	return func(s *settings) {
		if s.options == nil {
			s.options = make(map[string]string, len(options))
		}
		for k, v := range options {
			s.options[k] = v
		}
	}
}

// WithModule attaches the declaration to a module, inheriting the
// module's default compiler configuration.
func WithModule(m *Module) Option {
	return func(s *settings) {
		s.module = m
	}
}

// Private hides the declaration from module listings and tooling. It
// stays callable as usual.
func Private() Option {
	return func(s *settings) {
		s.private = true
	}
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
