package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfSceneExtractorImpl is the implementation of the gltfSceneExtractor interface.
type gltfSceneExtractorImpl struct {
	parser gltfParser
}

// gltfSceneExtractor builds the node hierarchy of a parsed glTF document.
type gltfSceneExtractor interface {
	// ExtractNodes creates one model.Node per glTF node with its rest transform applied
	// and its parent/child links set. Meshes are attached from the supplied slice.
	//
	// Parameters:
	//   - meshes: extracted meshes indexed by glTF mesh index
	//
	// Returns:
	//   - []*model.Node: nodes indexed by glTF node index
	//   - error: error if a child index is out of range or the hierarchy has a cycle
	ExtractNodes(meshes []*model.Mesh) ([]*model.Node, error)

	// ExtractRoot attaches the root nodes of the default scene under a synthetic root.
	// When the document declares no scene, every parentless node becomes a root.
	//
	// Parameters:
	//   - name: the name given to the synthetic root
	//   - nodes: nodes returned by ExtractNodes
	//
	// Returns:
	//   - *model.Node: the synthetic root (Index -1)
	//   - error: error if the scene references a missing node
	ExtractRoot(name string, nodes []*model.Node) (*model.Node, error)
}

var _ gltfSceneExtractor = &gltfSceneExtractorImpl{}

// newGLTFSceneExtractor creates a new scene extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSceneExtractor: the scene extractor
func newGLTFSceneExtractor(parser gltfParser) gltfSceneExtractor {
	return &gltfSceneExtractorImpl{parser: parser}
}

func (e *gltfSceneExtractorImpl) ExtractNodes(meshes []*model.Mesh) ([]*model.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	nodes := make([]*model.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		gn := &doc.Nodes[i]
		n := model.NewNode(gn.Name, i)
		n.SetRest(nodeTransform(gn))

		if gn.Mesh != nil {
			if *gn.Mesh < 0 || *gn.Mesh >= len(meshes) {
				return nil, fmt.Errorf("node %d: mesh %d: %w", i, *gn.Mesh, ErrIndexOutOfRange)
			}
			n.Mesh = meshes[*gn.Mesh]
		}
		if gn.Skin != nil {
			n.Skin = *gn.Skin
		}

		weights := gn.Weights
		if len(weights) == 0 && n.Mesh != nil {
			weights = n.Mesh.Weights
		}
		if len(weights) > 0 {
			n.RestWeights = append([]float32(nil), weights...)
			n.Weights = append([]float32(nil), weights...)
		}

		nodes[i] = n
	}

	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("node %d: child %d: %w", i, c, ErrIndexOutOfRange)
			}
			if nodes[c].Parent != nil || c == i {
				return nil, fmt.Errorf("node %d: child %d already has a parent or is its own parent", i, c)
			}
			nodes[i].AddChild(nodes[c])
		}
	}

	// a node that reaches itself through its parents would loop forever in traversal
	for _, n := range nodes {
		steps := 0
		for p := n.Parent; p != nil; p = p.Parent {
			steps++
			if p == n || steps > len(nodes) {
				return nil, fmt.Errorf("node %d: hierarchy contains a cycle", n.Index)
			}
		}
	}

	return nodes, nil
}

func (e *gltfSceneExtractorImpl) ExtractRoot(name string, nodes []*model.Node) (*model.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	root := model.NewNode(name, -1)

	sceneIndex := -1
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	} else if len(doc.Scenes) > 0 {
		sceneIndex = 0
	}

	if sceneIndex < 0 {
		for _, n := range nodes {
			if n.Parent == nil {
				root.AddChild(n)
			}
		}
		return root, nil
	}

	if sceneIndex >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene %d: %w", sceneIndex, ErrNoScene)
	}
	for _, idx := range doc.Scenes[sceneIndex].Nodes {
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("scene %d: node %d: %w", sceneIndex, idx, ErrIndexOutOfRange)
		}
		if nodes[idx].Parent != nil {
			return nil, fmt.Errorf("scene %d: node %d is not a root node", sceneIndex, idx)
		}
		root.AddChild(nodes[idx])
	}
	return root, nil
}

// nodeTransform returns the rest transform of a glTF node.
// A matrix takes precedence over TRS properties.
func nodeTransform(gn *gltfNode) model.Transform {
	if gn.Matrix != nil {
		return model.DecomposeMatrix(mgl32.Mat4(*gn.Matrix))
	}

	t := model.IdentityTransform()
	if gn.Translation != nil {
		t.Translation = mgl32.Vec3(*gn.Translation)
	}
	if gn.Rotation != nil {
		t.Rotation = model.QuatFromXYZW(gn.Rotation[:]).Normalize()
	}
	if gn.Scale != nil {
		t.Scale = mgl32.Vec3(*gn.Scale)
	}
	return t
}
