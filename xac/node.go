package xac

import (
	"fmt"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// RootParent is the parent index of nodes at the top of the hierarchy.
const RootParent = -1

type Node struct {
	Rotation            emfx.Quaternion32 `yaml:"rotation,flow"`
	ScaleRotation       emfx.Quaternion32 `yaml:"scaleRotation,flow"`
	Position            emfx.Vec3         `yaml:"position,flow"`
	Scale               emfx.Vec3         `yaml:"scale,flow"`
	ParentIndex         int32             `yaml:"parentIndex"`
	NumChildNodes       int32             `yaml:"numChildNodes"`
	IncludeInBoundsCalc bool              `yaml:"includeInBoundsCalc"`
	Transform           emfx.Matrix44     `yaml:"transform"`
	ImportanceFactor    float32           `yaml:"importanceFactor"`
	Name                string            `yaml:"name"`
}

func (n *Node) IsRoot() bool {
	return n.ParentIndex == RootParent
}

// NodeHierarchy is a flat node list; the tree is given by parent indices.
type NodeHierarchy struct {
	NumNodes     int32  `yaml:"numNodes"`
	NumRootNodes int32  `yaml:"numRootNodes"`
	Nodes        []Node `yaml:"nodes"`
}

// CountRoots returns the number of nodes without a parent.
func (h *NodeHierarchy) CountRoots() int {
	n := 0
	for i := range h.Nodes {
		if h.Nodes[i].IsRoot() {
			n++
		}
	}
	return n
}

// Roots returns the indices of nodes without a parent, in file order.
func (h *NodeHierarchy) Roots() []int {
	var roots []int
	for i := range h.Nodes {
		if h.Nodes[i].IsRoot() {
			roots = append(roots, i)
		}
	}
	return roots
}

// Parent returns the parent index of node i, or RootParent.
func (h *NodeHierarchy) Parent(i int) int {
	return int(h.Nodes[i].ParentIndex)
}

// Children returns the indices of the direct children of node i, in file order.
func (h *NodeHierarchy) Children(i int) []int {
	var children []int
	for j := range h.Nodes {
		if int(h.Nodes[j].ParentIndex) == i {
			children = append(children, j)
		}
	}
	return children
}

// ChildMap returns the children of every node in a single pass.
func (h *NodeHierarchy) ChildMap() [][]int {
	children := make([][]int, len(h.Nodes))
	for j := range h.Nodes {
		if p := h.Nodes[j].ParentIndex; p != RootParent {
			children[p] = append(children[p], j)
		}
	}
	return children
}

// Depth returns the number of ancestors of node i.
func (h *NodeHierarchy) Depth(i int) int {
	d := 0
	for p := h.Nodes[i].ParentIndex; p != RootParent; p = h.Nodes[p].ParentIndex {
		d++
	}
	return d
}

func (d *decoder) readNodeHierarchy(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	at := r.Pos()
	h := &NodeHierarchy{NumNodes: r.Int32(), NumRootNodes: r.Int32()}
	if err := r.Err(); err != nil {
		return err
	}
	if h.NumNodes <= 0 {
		return &emfx.FormatError{Kind: emfx.InvalidCount, Offset: at, ChunkType: c.Type,
			Expected: "> 0", Actual: h.NumNodes, Detail: "node count"}
	}

	offsets := make([]int64, 0, minInt(int(h.NumNodes), 1024))
	for i := 0; i < int(h.NumNodes) && r.Err() == nil; i++ {
		offsets = append(offsets, r.Pos())
		h.Nodes = append(h.Nodes, readNode(r))
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := h.validate(offsets, c.Type); err != nil {
		return err
	}
	if roots := h.CountRoots(); roots != int(h.NumRootNodes) {
		d.observer.Warn(fmt.Sprintf("node hierarchy declares %d root nodes, found %d", h.NumRootNodes, roots))
	}
	d.doc.Nodes = h
	return nil
}

func readNode(r *emfx.Reader) Node {
	n := Node{
		Rotation:      r.Quaternion32(),
		ScaleRotation: r.Quaternion32(),
		Position:      r.Vec3(),
		Scale:         r.Vec3(),
	}
	// shear and LOD masks
	r.Skip(3*4 + 2*4)
	n.ParentIndex = r.Int32()
	n.NumChildNodes = r.Int32()
	n.IncludeInBoundsCalc = r.Bool()
	n.Transform = r.Matrix44()
	n.ImportanceFactor = r.Float32()
	n.Name = r.ReadString()
	return n
}

// validate checks that parent indices stay inside the list and form no cycle.
func (h *NodeHierarchy) validate(offsets []int64, chunkType int32) error {
	n := len(h.Nodes)
	bad := func(i int, detail string) error {
		return &emfx.FormatError{Kind: emfx.InvalidNodeParent, Offset: offsets[i], ChunkType: chunkType,
			Expected: fmt.Sprintf("-1 or [0, %d)", n), Actual: h.Nodes[i].ParentIndex,
			Detail: fmt.Sprintf("node %d (%q): %s", i, h.Nodes[i].Name, detail)}
	}
	for i := range h.Nodes {
		p := int(h.Nodes[i].ParentIndex)
		if p == RootParent {
			continue
		}
		if p < 0 || p >= n {
			return bad(i, "parent index out of range")
		}
		if p == i {
			return bad(i, "node is its own parent")
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, n)
	var path []int
	for i := range h.Nodes {
		path = path[:0]
		j := i
		for j != RootParent && state[j] == unvisited {
			state[j] = visiting
			path = append(path, j)
			j = int(h.Nodes[j].ParentIndex)
		}
		if j != RootParent && state[j] == visiting {
			return bad(j, "parent chain forms a cycle")
		}
		for _, k := range path {
			state[k] = done
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
