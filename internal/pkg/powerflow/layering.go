package powerflow

import "github.com/google/uuid"

// Transient traversal colors. Heights are kept in a map scoped to the
// layering computation, never on the Network itself.
const (
	heightUnvisited  = -1
	heightInProgress = -2
)

// groupByNetworkDepth ranks networks by dependency height: a network whose
// battery discharges into another network must be evaluated after it, so it
// lands on a strictly higher layer. Networks sharing a layer have no
// same-tick data dependency and may be evaluated concurrently.
//
// A battery link that is unset, points at the owning network, or points at
// an unknown network is not an edge. A link back into a network still being
// resolved is a cycle; it contributes no height constraint, and whichever
// network was discovered first wins the tie. Every network ends on exactly
// one layer regardless.
func groupByNetworkDepth(s *PowerState) [][]*Network {
	heights := make(map[uuid.UUID]int, len(s.Networks))
	for _, pid := range s.netOrder {
		heights[pid] = heightUnvisited
	}

	grouped := make([][]*Network, 0)
	for _, pid := range s.netOrder {
		if heights[pid] != heightUnvisited {
			continue
		}
		grouped = resolveHeight(s, pid, heights, grouped)
	}
	return grouped
}

// depthFrame is one level of the explicit traversal stack. An explicit
// stack keeps pathological battery-link chains from exhausting the
// goroutine stack.
type depthFrame struct {
	pid  uuid.UUID
	deps []uuid.UUID
	next int
	best int // highest resolved dependency height, -1 when none
}

func resolveHeight(s *PowerState, root uuid.UUID, heights map[uuid.UUID]int, grouped [][]*Network) [][]*Network {
	heights[root] = heightInProgress
	stack := []*depthFrame{newDepthFrame(s, root)}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]

		if frame.next < len(frame.deps) {
			dep := frame.deps[frame.next]
			frame.next++
			switch h := heights[dep]; h {
			case heightUnvisited:
				heights[dep] = heightInProgress
				stack = append(stack, newDepthFrame(s, dep))
			case heightInProgress:
				// Cycle. Skip rather than block.
			default:
				if h > frame.best {
					frame.best = h
				}
			}
			continue
		}

		h := frame.best + 1
		heights[frame.pid] = h
		for len(grouped) <= h {
			grouped = append(grouped, nil)
		}
		grouped[h] = append(grouped[h], s.Networks[frame.pid])

		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if h > parent.best {
				parent.best = h
			}
		}
	}
	return grouped
}

func newDepthFrame(s *PowerState, pid uuid.UUID) *depthFrame {
	n := s.Networks[pid]
	deps := make([]uuid.UUID, 0, len(n.Batteries))
	for _, bid := range n.Batteries {
		bt := s.Batteries[bid]
		if bt == nil {
			continue
		}
		target := bt.LinkedNetworkDischarging
		if target == uuid.Nil || target == pid {
			continue
		}
		if _, ok := s.Networks[target]; !ok {
			continue
		}
		deps = append(deps, target)
	}
	return &depthFrame{pid: pid, deps: deps, best: -1}
}
