// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package topology implements the static cluster hierarchy (spec.md
// §4.2): Root -> Datacenter -> Rack -> Machine -> Disk, each node
// carrying a failure/recovery generator pair. Nodes live in a flat
// arena and reference each other by index, not pointer, per DESIGN
// NOTES §9 ("cyclic weak parent links ... represent as arena indices").
package topology

import (
	"go.uber.org/zap"

	"storj.io/crsim/distribution"
)

// Kind is a tagged-variant node level, avoiding virtual dispatch in the
// hot loop (DESIGN NOTES §9).
type Kind int

// Node levels.
const (
	Root Kind = iota
	Datacenter
	Rack
	Machine
	Disk
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Datacenter:
		return "Datacenter"
	case Rack:
		return "Rack"
	case Machine:
		return "Machine"
	case Disk:
		return "Disk"
	default:
		return "Unknown"
	}
}

// ID is an arena index into Tree.Nodes. The zero value is the root.
type ID int

// None is the parent id of the root node.
const None ID = -1

// Node is one element of the topology tree.
type Node struct {
	ID       ID
	Parent   ID
	Kind     Kind
	Children []ID

	Failure  distribution.Sampler
	Recovery distribution.Sampler

	LastFailureTime    float64
	LastBandwidthNeed  float64
	Injected           []FailureInterval
	injectedConsumed   []bool

	// Disk-only fields.
	MaxChunksPerDisk int
	ChunksUsed       int
	LatentGen        distribution.Sampler
	ScrubGen         distribution.Sampler
	LSE              map[int]struct{} // stripe indices currently LatentError on this disk
}

// Tree is the arena holding every Node, indexed by ID.
type Tree struct {
	Nodes  []*Node
	RootID ID
	log    *zap.Logger
}

// NewTree returns a tree containing only a Root node.
func NewTree(log *zap.Logger) *Tree {
	t := &Tree{log: log}
	root := &Node{ID: 0, Parent: None, Kind: Root}
	t.Nodes = append(t.Nodes, root)
	t.RootID = 0
	return t
}

// AddNode appends a new node as a child of parent and returns its ID.
func (t *Tree) AddNode(parent ID, kind Kind) ID {
	id := ID(len(t.Nodes))
	n := &Node{ID: id, Parent: parent, Kind: kind}
	t.Nodes = append(t.Nodes, n)
	if parent != None {
		p := t.Nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Node returns the node for id.
func (t *Tree) Node(id ID) *Node { return t.Nodes[id] }

// Ancestor walks up from id until it finds a node of kind, or returns
// None if no such ancestor exists.
func (t *Tree) Ancestor(id ID, kind Kind) ID {
	for cur := id; cur != None; cur = t.Nodes[cur].Parent {
		if t.Nodes[cur].Kind == kind {
			return cur
		}
	}
	return None
}

// Disks returns every Disk-kind node in the tree, in ID order.
func (t *Tree) Disks() []ID {
	var out []ID
	for _, n := range t.Nodes {
		if n.Kind == Disk {
			out = append(out, n.ID)
		}
	}
	return out
}

// Machines returns every Machine-kind node in the tree, in ID order.
func (t *Tree) Machines() []ID {
	var out []ID
	for _, n := range t.Nodes {
		if n.Kind == Machine {
			out = append(out, n.ID)
		}
	}
	return out
}

// Racks returns every Rack-kind node in the tree, in ID order.
func (t *Tree) Racks() []ID {
	var out []ID
	for _, n := range t.Nodes {
		if n.Kind == Rack {
			out = append(out, n.ID)
		}
	}
	return out
}

// Walk calls fn for every node in the tree, root first, in ID order.
func (t *Tree) Walk(fn func(*Node)) {
	for _, n := range t.Nodes {
		fn(n)
	}
}
