package canopy

import (
	"fmt"
	"os"
)

// globalDebug enables extra validation in tree operations. In release mode
// the checks are skipped entirely.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, tree
// operations on disposed nodes panic with a descriptive message and
// pathological tree depths warn on stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree operation. Only called when debug mode is on.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[canopy] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}
