package renderer

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// drawItem is one primitive instance to draw this frame.
type drawItem struct {
	node      *model.Node
	primitive *model.Primitive
	material  *model.Material
	world     mgl32.Mat4
	variant   pipelineVariant
	depth     float32 // view-space distance, used to order blended draws
}

// drawKey identifies the per-draw GPU bindings of a primitive at a node.
type drawKey struct {
	node      *model.Node
	primitive *model.Primitive
}

func (d drawItem) key() drawKey {
	return drawKey{node: d.node, primitive: d.primitive}
}

// buildDrawList walks the scene graph and returns the visible primitives.
// Opaque draws come first in traversal order; blended draws follow, farthest first.
//
// Parameters:
//   - root: the scene root, nil for an empty scene
//   - viewProj: the camera view-projection matrix used for culling
//   - eye: the camera position used to order blended draws
//   - fallback: the material used for primitives without one
//
// Returns:
//   - []drawItem: the visible draws
//   - int: the number of primitives rejected by the frustum
func buildDrawList(root *model.Node, viewProj mgl32.Mat4, eye mgl32.Vec3, fallback *model.Material) ([]drawItem, int) {
	if root == nil {
		return nil, 0
	}

	frustum := common.ExtractFrustum(viewProj)
	var opaque, blended []drawItem
	culled := 0

	root.WalkWorld(func(n *model.Node, world mgl32.Mat4) {
		if n.Mesh == nil {
			return
		}
		for _, p := range n.Mesh.Primitives {
			if p == nil || len(p.Indices) == 0 || p.VertexCount() == 0 {
				continue
			}
			bmin, bmax := common.TransformBox(world, p.Min, p.Max)
			if !frustum.IntersectsBox(bmin, bmax) {
				culled++
				continue
			}

			mat := p.Material
			if mat == nil {
				mat = fallback
			}
			item := drawItem{
				node:      n,
				primitive: p,
				material:  mat,
				world:     world,
				variant:   variantFor(mat),
			}
			if item.variant.blend {
				item.depth = bmin.Add(bmax).Mul(0.5).Sub(eye).Len()
				blended = append(blended, item)
			} else {
				opaque = append(opaque, item)
			}
		}
	})

	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].depth > blended[j].depth
	})
	return append(opaque, blended...), culled
}
