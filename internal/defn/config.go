package defn

import (
	"os"
	"strings"
	"sync"

	"github.com/deft-ml/deft/internal/backend/eval"
)

// CallConfig selects and parameterizes the compiler for one call. The
// zero value means "inherit": an empty Compiler falls through to the
// definition, module and process configuration, and finally to the
// built-in interpreter.
type CallConfig struct {
	Compiler string
	Options  map[string]string
}

var (
	processMu      sync.Mutex
	processDefault string

	envOnce     sync.Once
	envCompiler string
)

// SetDefaultCompiler sets the process-wide default compiler. An empty
// name clears it, falling back to the DEFT_COMPILER environment variable
// and then the interpreter.
func SetDefaultCompiler(name string) {
	processMu.Lock()
	defer processMu.Unlock()
	processDefault = strings.TrimSpace(name)
}

// DefaultCompiler reports the compiler a call resolves to when nothing
// nearer names one.
func DefaultCompiler() string {
	processMu.Lock()
	name := processDefault
	processMu.Unlock()
	if name != "" {
		return name
	}
	if env := envDefault(); env != "" {
		return env
	}
	return eval.Name
}

// envDefault reads DEFT_COMPILER once, trimmed.
func envDefault() string {
	envOnce.Do(func() {
		envCompiler = strings.TrimSpace(os.Getenv("DEFT_COMPILER"))
	})
	return envCompiler
}

// resolveConfig folds the configuration levels into one effective
// CallConfig. The compiler name is the nearest non-empty of call site,
// definition, module and process default; options merge with the nearer
// level winning per key.
func resolveConfig(call CallConfig, def CallConfig, module *Module) CallConfig {
	out := CallConfig{Options: map[string]string{}}

	var moduleCfg CallConfig
	if module != nil {
		moduleCfg = module.config
	}

	switch {
	case call.Compiler != "":
		out.Compiler = call.Compiler
	case def.Compiler != "":
		out.Compiler = def.Compiler
	case moduleCfg.Compiler != "":
		out.Compiler = moduleCfg.Compiler
	default:
		out.Compiler = DefaultCompiler()
	}

	// Far to near so near keys overwrite.
	for _, level := range []map[string]string{moduleCfg.Options, def.Options, call.Options} {
		for k, v := range level {
			out.Options[k] = v
		}
	}
	return out
}
