package renderer

import (
	_ "embed"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/lit.wgsl
var litShaderSource string

// meshBuffers holds the GPU copy of a primitive's geometry.
type meshBuffers struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

// textureBinding holds a sampled texture. fallback is set for the white texture
// substituted when an image is missing or fails to decode.
type textureBinding struct {
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	sampler  *wgpu.Sampler
	fallback bool
}

// drawBinding holds the per-draw uniform buffer and its bind group.
type drawBinding struct {
	uniform   *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	texture   *textureBinding
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	// Frame state, valid between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	shaderModule   *wgpu.ShaderModule
	frameLayout    *wgpu.BindGroupLayout
	drawLayout     *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[pipelineVariant]*wgpu.RenderPipeline

	cameraBuffer   *wgpu.Buffer
	lightBuffer    *wgpu.Buffer
	frameBindGroup *wgpu.BindGroup

	meshes   map[*model.Primitive]*meshBuffers
	textures map[*model.Texture]*textureBinding
	draws    map[drawKey]*drawBinding
	white    *textureBinding

	log *zap.Logger
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the WebGPU instance, adapter, device and the lit pass resources
// that do not depend on the surface size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - forceFallbackAdapter: request a software adapter
//   - sampleCount: the MSAA sample count of the main pass
//   - log: the logger for resource warnings
//
// Returns:
//   - wgpuRendererBackend: the backend
//   - error: error if any device-level resource cannot be created
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, log *zap.Logger) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("window has no surface descriptor")
	}

	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{A: 1},
		pipelines:   make(map[pipelineVariant]*wgpu.RenderPipeline),
		meshes:      make(map[*model.Primitive]*meshBuffers),
		textures:    make(map[*model.Texture]*textureBinding),
		draws:       make(map[drawKey]*drawBinding),
		log:         log,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.initLitPass(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// initLitPass creates the shader module, bind group layouts, frame uniforms and the fallback texture.
func (b *wgpuRendererBackendImpl) initLitPass() error {
	var err error
	b.shaderModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Lit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: litShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create lit shader module: %w", err)
	}

	cameraSize := uint64((&camera.GPUCameraUniform{}).Size())
	lightSize := uint64(light.UniformSize)

	b.frameLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: cameraSize},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: lightSize},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create frame bind group layout: %w", err)
	}

	b.drawLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Draw Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: drawUniformSize},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create draw bind group layout: %w", err)
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Lit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.drawLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create lit pipeline layout: %w", err)
	}

	if b.cameraBuffer, err = b.createUniformBuffer("Camera Uniform Buffer", cameraSize); err != nil {
		return err
	}
	if b.lightBuffer, err = b.createUniformBuffer("Light Uniform Buffer", lightSize); err != nil {
		return err
	}

	b.frameBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.lightBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create frame bind group: %w", err)
	}

	b.white, err = b.uploadTexture("White Texture", []byte{255, 255, 255, 255}, 1, 1, model.TextureSampler{})
	if err != nil {
		return err
	}
	b.white.fallback = true
	return nil
}

func (b *wgpuRendererBackendImpl) createUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return ErrNoSurfaceFormat
	}
	format := preferredSurfaceFormat(capabilities.Formats)
	formatChanged := b.surfaceFormat != nil && *b.surfaceFormat != format
	b.surfaceFormat = &format

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if formatChanged {
		for v, p := range b.pipelines {
			p.Release()
			delete(b.pipelines, v)
		}
	}

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	var err error
	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("failed to create MSAA texture: %w", err)
		}
		if b.msaaTextureView, err = b.msaaTexture.CreateView(nil); err != nil {
			return fmt.Errorf("failed to create MSAA texture view: %w", err)
		}
	}

	// Depth sample count must match the color attachment.
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	if b.depthTextureView, err = b.depthTexture.CreateView(nil); err != nil {
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView, // nil without MSAA; set in BeginFrame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

// preferredSurfaceFormat returns the first sRGB format, or the first format when none is sRGB.
// Shading happens in linear space, so an sRGB target applies the transfer function on store.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

// releaseAttachments frees the size-dependent attachments. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = c
	}
}

func (b *wgpuRendererBackendImpl) WriteFrameUniforms(cameraData, lightData []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteBuffer(b.cameraBuffer, 0, cameraData)
	b.queue.WriteBuffer(b.lightBuffer, 0, lightData)
}

// pipeline returns the render pipeline of a variant, creating it on first use.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) pipeline(v pipelineVariant) (*wgpu.RenderPipeline, error) {
	if p, ok := b.pipelines[v]; ok {
		return p, nil
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  v.label(),
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					Blend:     v.blendState(),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  v.cullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: v.depthWrite(),
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", v.label(), err)
	}
	b.pipelines[v] = created
	return created, nil
}

// mesh returns the GPU buffers of a primitive, uploading them on first use.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) mesh(p *model.Primitive) (*meshBuffers, error) {
	if m, ok := b.meshes[p]; ok {
		return m, nil
	}

	vertexData := interleaveVertices(p)
	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)

	indexData := common.SliceToBytes(p.Indices)
	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertex.Release()
		return nil, fmt.Errorf("failed to create index buffer: %w", err)
	}
	b.queue.WriteBuffer(index, 0, indexData)

	m := &meshBuffers{vertex: vertex, index: index, indexCount: uint32(len(p.Indices))}
	b.meshes[p] = m
	return m, nil
}

// texture returns the binding of a material texture, uploading it on first use.
// A nil texture, or one that fails to decode, resolves to the white fallback.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) texture(t *model.Texture) (*textureBinding, error) {
	if t == nil {
		return b.white, nil
	}
	if tb, ok := b.textures[t]; ok {
		return tb, nil
	}

	pixels, width, height, err := t.Decode()
	if err != nil {
		b.log.Warn("texture unusable, drawing untextured", zap.String("texture", t.Name), zap.Error(err))
		b.textures[t] = b.white
		return b.white, nil
	}

	tb, err := b.uploadTexture(t.Name+" Texture", pixels, width, height, t.Sampler)
	if err != nil {
		return nil, err
	}
	b.textures[t] = tb
	return tb, nil
}

func (b *wgpuRendererBackendImpl) uploadTexture(label string, pixels []byte, width, height uint32, s model.TextureSampler) (*textureBinding, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}

	desc := samplerDescriptor(label+" Sampler", s)
	samp, err := b.device.CreateSampler(&desc)
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create %s sampler: %w", label, err)
	}

	return &textureBinding{texture: tex, view: view, sampler: samp}, nil
}

// drawBindings returns the per-draw uniform and bind group of a draw, creating them on first use
// and rebuilding the bind group when the draw's texture changed. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) drawBindings(key drawKey, tex *textureBinding) (*drawBinding, error) {
	db, ok := b.draws[key]
	if ok && db.texture == tex {
		return db, nil
	}

	if !ok {
		buf, err := b.createUniformBuffer("Draw Uniform Buffer", drawUniformSize)
		if err != nil {
			return nil, err
		}
		db = &drawBinding{uniform: buf}
		b.draws[key] = db
	}
	if db.bindGroup != nil {
		db.bindGroup.Release()
		db.bindGroup = nil
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Draw Bind Group",
		Layout: b.drawLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: db.uniform, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: tex.view},
			{Binding: 2, Sampler: tex.sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draw bind group: %w", err)
	}
	db.bindGroup = bg
	db.texture = tex
	return db, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return fmt.Errorf("surface is not configured")
	}
	// Acquiring twice without presenting makes wgpu-native report an already acquired image.
	if b.frameSurface != nil {
		return ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) Draw(item drawItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("draw outside of a frame")
	}

	p, err := b.pipeline(item.variant)
	if err != nil {
		return err
	}
	m, err := b.mesh(item.primitive)
	if err != nil {
		return err
	}
	tex, err := b.texture(item.material.BaseColorTexture)
	if err != nil {
		return err
	}
	db, err := b.drawBindings(item.key(), tex)
	if err != nil {
		return err
	}

	uniform := newDrawUniform(item.world, item.material, !tex.fallback)
	b.queue.WriteBuffer(db.uniform, 0, uniform.Marshal())

	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, b.frameBindGroup, nil)
	b.framePass.SetBindGroup(1, db.bindGroup, nil)
	b.framePass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return nil
	}

	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, db := range b.draws {
		if db.bindGroup != nil {
			db.bindGroup.Release()
		}
		db.uniform.Release()
		delete(b.draws, k)
	}
	for k, tb := range b.textures {
		if tb != b.white {
			tb.release()
		}
		delete(b.textures, k)
	}
	if b.white != nil {
		b.white.release()
		b.white = nil
	}
	for k, m := range b.meshes {
		m.vertex.Release()
		m.index.Release()
		delete(b.meshes, k)
	}
	for v, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, v)
	}

	b.releaseAttachments()

	if b.frameBindGroup != nil {
		b.frameBindGroup.Release()
		b.frameBindGroup = nil
	}
	if b.cameraBuffer != nil {
		b.cameraBuffer.Release()
		b.cameraBuffer = nil
	}
	if b.lightBuffer != nil {
		b.lightBuffer.Release()
		b.lightBuffer = nil
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.drawLayout != nil {
		b.drawLayout.Release()
		b.drawLayout = nil
	}
	if b.frameLayout != nil {
		b.frameLayout.Release()
		b.frameLayout = nil
	}
	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.shaderModule = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (tb *textureBinding) release() {
	tb.sampler.Release()
	tb.view.Release()
	tb.texture.Release()
}
