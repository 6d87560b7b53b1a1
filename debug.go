package arbor

import (
	"fmt"
	"os"
	"time"
)

// globalDebug mirrors the most recently set Viewport debug flag so that node
// operations (which lack a Viewport pointer) can check it cheaply. Only valid
// with a single Viewport; multiple Viewports with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// frameStats holds per-frame metrics. Only populated when Viewport.debug is
// true.
type frameStats struct {
	frameTime  time.Duration
	drawnNodes int
}

// debugLog prints frame stats to stderr.
func (v *Viewport) debugLog() {
	_, _ = fmt.Fprintf(os.Stderr, "[arbor] frame: %v | drawn nodes: %d\n",
		v.stats.frameTime, v.stats.drawnNodes)
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree operation. Only called in debug mode; release-mode
// callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("arbor debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
