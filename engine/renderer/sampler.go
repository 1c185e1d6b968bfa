package renderer

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// samplerDescriptor maps asset sampler settings to a WebGPU sampler descriptor.
// Unset values default to linear filtering and repeat wrapping.
//
// Parameters:
//   - label: the sampler debug label
//   - s: the asset sampler settings
//
// Returns:
//   - wgpu.SamplerDescriptor: the descriptor to create the sampler from
func samplerDescriptor(label string, s model.TextureSampler) wgpu.SamplerDescriptor {
	return wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  addressMode(common.Coalesce(s.WrapS, model.WrapRepeat)),
		AddressModeV:  addressMode(common.Coalesce(s.WrapT, model.WrapRepeat)),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterMode(common.Coalesce(s.MagFilter, model.FilterLinear)),
		MinFilter:     filterMode(common.Coalesce(s.MinFilter, model.FilterLinear)),
		MipmapFilter:  mipmapFilterMode(s.MinFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func addressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case model.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case model.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterMode(filter int) wgpu.FilterMode {
	switch filter {
	case model.FilterNearest, model.FilterNearestMipmapNearest, model.FilterNearestMipmapLinear:
		return wgpu.FilterModeNearest
	default:
		return wgpu.FilterModeLinear
	}
}

func mipmapFilterMode(minFilter int) wgpu.MipmapFilterMode {
	switch minFilter {
	case model.FilterNearestMipmapNearest, model.FilterLinearMipmapNearest:
		return wgpu.MipmapFilterModeNearest
	default:
		return wgpu.MipmapFilterModeLinear
	}
}
