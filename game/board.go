package game

import "fmt"

// NodeType classifies a board node.
type NodeType int

const (
	NodeNormal NodeType = iota
	NodeStart
	NodeHomeEntrance
	NodeHomePath
	NodeHome
)

// String returns the protocol string for a NodeType.
func (nt NodeType) String() string {
	switch nt {
	case NodeNormal:
		return "normal"
	case NodeStart:
		return "start"
	case NodeHomeEntrance:
		return "home_entrance"
	case NodeHomePath:
		return "home_path"
	case NodeHome:
		return "home"
	default:
		return "unknown"
	}
}

// BoardNode is one square of the track or a home-path cell. Built once per
// match and never mutated afterwards.
type BoardNode struct {
	ID   int
	Type NodeType
	Safe bool

	// Forward holds one successor for normal nodes and two at a home
	// entrance: [0] continues around the ring, [1] forks into the owner's
	// home path.
	Forward  []int
	Backward int

	// StartFor / EntranceFor / HomeFor hold the owning seat for tagged
	// nodes, -1 otherwise.
	StartFor    int
	EntranceFor int
	HomeFor     int
}

// Board is the immutable node graph for one match.
type Board struct {
	TrackLen    int
	HomePathLen int
	Seats       int
	Nodes       map[int]*BoardNode
}

// NewBoard builds the ring plus one home branch per active seat.
// Ring node ids are 0..trackLen-1; home cells for seat s occupy
// trackLen + s*homePathLen .. trackLen + (s+1)*homePathLen - 1, the last of
// which is the terminal home node.
func NewBoard(trackLen, homePathLen, seats int) *Board {
	b := &Board{
		TrackLen:    trackLen,
		HomePathLen: homePathLen,
		Seats:       seats,
		Nodes:       make(map[int]*BoardNode, trackLen+seats*homePathLen),
	}

	for i := 0; i < trackLen; i++ {
		b.Nodes[i] = &BoardNode{
			ID:          i,
			Type:        NodeNormal,
			Forward:     []int{(i + 1) % trackLen},
			Backward:    (i - 1 + trackLen) % trackLen,
			StartFor:    -1,
			EntranceFor: -1,
			HomeFor:     -1,
		}
	}

	spacing := trackLen / seats
	for s := 0; s < seats; s++ {
		start := b.Nodes[s*spacing]
		start.Type = NodeStart
		start.Safe = true
		start.StartFor = s

		entrance := b.Nodes[(s*spacing-1+trackLen)%trackLen]
		entrance.Type = NodeHomeEntrance
		entrance.EntranceFor = s

		prev := entrance.ID
		for j := 0; j < homePathLen; j++ {
			id := trackLen + s*homePathLen + j
			node := &BoardNode{
				ID:          id,
				Type:        NodeHomePath,
				Safe:        true,
				Backward:    prev,
				StartFor:    -1,
				EntranceFor: -1,
				HomeFor:     s,
			}
			if j == homePathLen-1 {
				node.Type = NodeHome
			} else {
				node.Forward = []int{id + 1}
			}
			b.Nodes[id] = node
			if j == 0 {
				// The fork: ring continuation first, home branch second.
				entrance.Forward = append(entrance.Forward, id)
			}
			prev = id
		}
	}

	return b
}

// StartNode returns the ring id of the given seat's start square.
func (b *Board) StartNode(seat int) int {
	return seat * (b.TrackLen / b.Seats)
}

// HomeNode returns the id of the given seat's terminal home node.
func (b *Board) HomeNode(seat int) int {
	return b.TrackLen + (seat+1)*b.HomePathLen - 1
}

// Node looks up a node by id.
func (b *Board) Node(id int) (*BoardNode, error) {
	n, ok := b.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("no board node %d", id)
	}
	return n, nil
}

// next returns the forward successor of node for a mover of the given seat.
// At the mover's own home entrance the walk is forced onto the home branch;
// at any other entrance it continues around the ring. Returns -1 past the
// terminal home node (dead end).
func (b *Board) next(node *BoardNode, seat int) int {
	if node.Type == NodeHome {
		return -1
	}
	if node.Type == NodeHomeEntrance && node.EntranceFor == seat {
		return node.Forward[1]
	}
	return node.Forward[0]
}

// walkForward walks steps hops from nodeID for a mover of the given seat and
// returns every node id visited, destination last. ok is false when the walk
// dead-ends before consuming all steps; there are no partial moves.
func (b *Board) walkForward(nodeID, steps, seat int) (path []int, ok bool) {
	node, err := b.Node(nodeID)
	if err != nil {
		return nil, false
	}
	path = make([]int, 0, steps)
	for i := 0; i < steps; i++ {
		nxt := b.next(node, seat)
		if nxt < 0 {
			return nil, false
		}
		node = b.Nodes[nxt]
		path = append(path, nxt)
	}
	return path, true
}

// DistanceToHome counts the forward hops from nodeID to the seat's terminal
// home node, or -1 when it is unreachable (foreign home path).
func (b *Board) DistanceToHome(nodeID, seat int) int {
	node, err := b.Node(nodeID)
	if err != nil {
		return -1
	}
	limit := b.TrackLen + b.HomePathLen
	for i := 0; i <= limit; i++ {
		if node.Type == NodeHome && node.HomeFor == seat {
			return i
		}
		nxt := b.next(node, seat)
		if nxt < 0 {
			return -1
		}
		node = b.Nodes[nxt]
	}
	return -1
}

// walkBackward walks steps hops backward. Backward movement always stays on
// the ring and ignores home forks entirely.
func (b *Board) walkBackward(nodeID, steps int) (path []int, ok bool) {
	node, err := b.Node(nodeID)
	if err != nil {
		return nil, false
	}
	path = make([]int, 0, steps)
	for i := 0; i < steps; i++ {
		node = b.Nodes[node.Backward]
		path = append(path, node.ID)
	}
	return path, true
}
