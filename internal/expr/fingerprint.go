package expr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint renders the graph's structure canonically: operator kinds,
// input wiring, shapes, dtypes and per-kind attributes, with constant
// payloads digested. Two traces of the same computation over the same
// input template fingerprint equally, so the fingerprint is a sound
// artifact cache key component; any structural difference, including a
// changed constant, produces a different key.
func (g *Graph) Fingerprint() string {
	var b strings.Builder
	for i, n := range g.nodes {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%d:%s", n.id, n.kind)
		if len(n.inputs) > 0 {
			b.WriteByte('(')
			for j, in := range n.inputs {
				if j > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, "%d", in.id)
			}
			b.WriteByte(')')
		}
		b.WriteString(n.dtype.String())
		b.WriteString(n.shape.String())
		switch attr := n.attr.(type) {
		case paramAttr:
			fmt.Fprintf(&b, "@%d", attr.index)
		case constAttr:
			sum := sha256.Sum256(attr.value.Data())
			fmt.Fprintf(&b, "#%s", hex.EncodeToString(sum[:8]))
		case reduceAttr:
			fmt.Fprintf(&b, "%v", attr.axes)
		case transposeAttr:
			fmt.Fprintf(&b, "%v", attr.perm)
		}
	}
	b.WriteString("->")
	for i, out := range g.outputs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", out.id)
	}
	return b.String()
}
