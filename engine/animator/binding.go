package animator

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// propertyBinding mixes every action's contribution to one property of one node.
// Values are flat float slices; rotations are stored x, y, z, w.
type propertyBinding struct {
	node   *model.Node
	path   model.TrackPath
	rest   []float32
	sample []float32
	accum  []float32
	weight float32
}

func newPropertyBinding(node *model.Node, path model.TrackPath, components int) *propertyBinding {
	b := &propertyBinding{
		node:   node,
		path:   path,
		rest:   make([]float32, components),
		sample: make([]float32, components),
		accum:  make([]float32, components),
	}

	switch path {
	case model.PathTranslation:
		copy(b.rest, node.Rest.Translation[:])
	case model.PathScale:
		copy(b.rest, node.Rest.Scale[:])
	case model.PathRotation:
		q := node.Rest.Rotation
		b.rest[0], b.rest[1], b.rest[2], b.rest[3] = q.V[0], q.V[1], q.V[2], q.W
	case model.PathWeights:
		copy(b.rest, node.RestWeights)
	}
	return b
}

func (b *propertyBinding) begin() {
	b.weight = 0
}

// accumulate blends v into the running result with weight w.
// The first contribution is taken as is; later ones are mixed by w over the total weight so far.
func (b *propertyBinding) accumulate(v []float32, w float32) {
	if b.weight == 0 {
		copy(b.accum, v)
		b.weight = w
		return
	}
	b.weight += w
	b.mix(b.accum, v, w/b.weight)
}

// apply writes the mixed value to the node, filling any missing weight from the rest pose.
func (b *propertyBinding) apply() {
	switch {
	case b.weight <= 0:
		copy(b.accum, b.rest)
	case b.weight < 1:
		b.mix(b.accum, b.rest, 1-b.weight)
	}

	n := b.node
	switch b.path {
	case model.PathTranslation:
		n.Local.Translation = mgl32.Vec3{b.accum[0], b.accum[1], b.accum[2]}
	case model.PathScale:
		n.Local.Scale = mgl32.Vec3{b.accum[0], b.accum[1], b.accum[2]}
	case model.PathRotation:
		n.Local.Rotation = model.QuatFromXYZW(b.accum)
	case model.PathWeights:
		if len(n.Weights) != len(b.accum) {
			n.Weights = make([]float32, len(b.accum))
		}
		copy(n.Weights, b.accum)
	}
}

func (b *propertyBinding) mix(dst, src []float32, s float32) {
	if b.path == model.PathRotation {
		q := model.SlerpQuat(model.QuatFromXYZW(dst), model.QuatFromXYZW(src), s)
		dst[0], dst[1], dst[2], dst[3] = q.V[0], q.V[1], q.V[2], q.W
		return
	}
	for i := range dst {
		dst[i] += (src[i] - dst[i]) * s
	}
}

type bindingKey struct {
	node int
	path model.TrackPath
}
