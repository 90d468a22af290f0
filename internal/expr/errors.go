package expr

import "errors"

// ErrRestrictedSyntax is the sentinel for constructs outside the
// graph-building subset: reading data through a symbolic handle, mixing
// handles from different recording sessions, binding a handle to a
// data-bearing host parameter, or declaring a definition with a signature
// the subset cannot express.
var ErrRestrictedSyntax = errors.New("expr: construct outside the graph-building subset")
