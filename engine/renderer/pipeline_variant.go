package renderer

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipelineVariant selects one of the lit render pipelines.
// Materials only differ in culling and blending, so a handful of pipelines cover every asset.
type pipelineVariant struct {
	doubleSided bool
	blend       bool
}

// variantFor returns the pipeline variant that draws the given material.
func variantFor(mat *model.Material) pipelineVariant {
	return pipelineVariant{
		doubleSided: mat.DoubleSided,
		blend:       mat.AlphaMode == "BLEND",
	}
}

// label is the debug label of the variant's pipeline.
func (v pipelineVariant) label() string {
	label := "Lit"
	if v.doubleSided {
		label += " DoubleSided"
	}
	if v.blend {
		label += " Blend"
	}
	return label + " Render Pipeline"
}

func (v pipelineVariant) cullMode() wgpu.CullMode {
	if v.doubleSided {
		return wgpu.CullModeNone
	}
	return wgpu.CullModeBack
}

// blendState returns source-over alpha blending for blended variants, nil otherwise.
func (v pipelineVariant) blendState() *wgpu.BlendState {
	if !v.blend {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// depthWrite reports whether the variant writes depth. Blended surfaces test but do not write.
func (v pipelineVariant) depthWrite() bool {
	return !v.blend
}
