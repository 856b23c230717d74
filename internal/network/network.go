package network

import (
	"fmt"

	"github.com/san-kum/deltasim/internal/channel"
)

// ID addresses a channel in the arena.
type ID int

// NoParent marks the root channel.
const NoParent ID = -1

type node struct {
	ch       *channel.Channel
	parent   ID
	children []ID
}

// Network is the arena of every channel ever created. It is not safe for
// concurrent mutation.
type Network struct {
	nodes []node
}

func New() *Network {
	return &Network{nodes: make([]node, 0, 16)}
}

// AddRoot adds a channel without a parent.
func (n *Network) AddRoot(ch *channel.Channel) ID {
	return n.add(ch, NoParent)
}

func (n *Network) add(ch *channel.Channel, parent ID) ID {
	id := ID(len(n.nodes))
	n.nodes = append(n.nodes, node{ch: ch, parent: parent})
	return id
}

// attach records a and b as the children of parent.
func (n *Network) attach(parent ID, a, b *channel.Channel) (ID, ID) {
	ia := n.add(a, parent)
	ib := n.add(b, parent)
	n.nodes[parent].children = []ID{ia, ib}
	return ia, ib
}

func (n *Network) valid(id ID) bool {
	return id >= 0 && int(id) < len(n.nodes)
}

// Get returns the channel stored under id.
func (n *Network) Get(id ID) (*channel.Channel, error) {
	if !n.valid(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, id)
	}
	return n.nodes[id].ch, nil
}

// Parent returns the parent id, or NoParent for the root.
func (n *Network) Parent(id ID) (ID, error) {
	if !n.valid(id) {
		return NoParent, fmt.Errorf("%w: %d", ErrUnknownChannel, id)
	}
	return n.nodes[id].parent, nil
}

// Children returns the ids produced when id branched.
func (n *Network) Children(id ID) ([]ID, error) {
	if !n.valid(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, id)
	}
	return append([]ID(nil), n.nodes[id].children...), nil
}

// Len returns the number of channels ever created.
func (n *Network) Len() int { return len(n.nodes) }

// ActiveIDs returns the ids of active channels in arena order.
func (n *Network) ActiveIDs() []ID {
	ids := make([]ID, 0, len(n.nodes))
	for i, nd := range n.nodes {
		if nd.ch.Active() {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// LiveCount returns the number of active channels.
func (n *Network) LiveCount() int {
	count := 0
	for _, nd := range n.nodes {
		if nd.ch.Active() {
			count++
		}
	}
	return count
}
