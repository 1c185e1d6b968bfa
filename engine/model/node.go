package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is one element of a loaded scene graph.
// Rest holds the transform authored in the asset; Local holds the current pose and is
// rewritten by animation playback every frame.
type Node struct {
	// Name is the node's identifier from the asset (may be empty).
	Name string

	// Index is the node's index in SceneAsset.Nodes, or -1 for a synthetic root.
	Index int

	// Parent is the parent node, nil for a root.
	Parent *Node

	// Children are the node's direct children in document order.
	Children []*Node

	// Mesh is the mesh drawn at this node, nil if the node carries no geometry.
	Mesh *Mesh

	// Skin is the index of the skin bound to this node, or -1.
	Skin int

	// Rest is the bind-pose transform from the asset.
	Rest Transform

	// Local is the current pose transform.
	Local Transform

	// RestWeights are the morph target weights from the asset.
	RestWeights []float32

	// Weights are the current morph target weights.
	Weights []float32
}

// NewNode creates a node with identity rest and local transforms.
//
// Parameters:
//   - name: the node name
//   - index: the node index within its asset, or -1
//
// Returns:
//   - *Node: the new node
func NewNode(name string, index int) *Node {
	return &Node{
		Name:  name,
		Index: index,
		Skin:  -1,
		Rest:  IdentityTransform(),
		Local: IdentityTransform(),
	}
}

// AddChild appends child to the node's children and sets its parent.
//
// Parameters:
//   - child: the node to attach
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// SetRest sets both the rest and the current transform.
//
// Parameters:
//   - t: the rest transform
func (n *Node) SetRest(t Transform) {
	n.Rest = t
	n.Local = t
}

// ResetPose restores the current transform and morph weights to the rest pose.
func (n *Node) ResetPose() {
	n.Local = n.Rest
	if len(n.RestWeights) > 0 {
		n.Weights = append(n.Weights[:0], n.RestWeights...)
	}
}

// LocalMatrix returns the current local transform as a matrix.
//
// Returns:
//   - mgl32.Mat4: the local matrix
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return n.Local.Matrix()
}

// WorldMatrix returns the node's current transform relative to the scene root.
//
// Returns:
//   - mgl32.Mat4: the product of every ancestor's local matrix and this node's
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Walk visits the node and its descendants depth-first, parents before children.
// Returning false from fn skips the visited node's subtree.
//
// Parameters:
//   - fn: called for every visited node
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// WalkWorld visits the node and its descendants depth-first, passing each node's world matrix.
//
// Parameters:
//   - fn: called for every node with its world matrix
func (n *Node) WalkWorld(fn func(node *Node, world mgl32.Mat4)) {
	var parent mgl32.Mat4
	if n.Parent != nil {
		parent = n.Parent.WorldMatrix()
	} else {
		parent = mgl32.Ident4()
	}
	n.walkWorld(parent, fn)
}

func (n *Node) walkWorld(parent mgl32.Mat4, fn func(node *Node, world mgl32.Mat4)) {
	world := parent.Mul4(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.Children {
		c.walkWorld(world, fn)
	}
}

// Find returns the first node in the subtree with the given name, or nil.
//
// Parameters:
//   - name: the node name to search for
//
// Returns:
//   - *Node: the matching node or nil
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}
