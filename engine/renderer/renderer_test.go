package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

type fakeBackend struct {
	configured [][2]int
	clear      wgpu.Color
	cameraData []byte
	lightData  []byte
	began      int
	draws      []drawItem
	ended      int
	presented  int
	released   int

	beginErr error
	drawErr  error
	endErr   error
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) SetClearColor(c wgpu.Color) { f.clear = c }
func (f *fakeBackend) WriteFrameUniforms(cameraData, lightData []byte) {
	f.cameraData, f.lightData = cameraData, lightData
}
func (f *fakeBackend) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.began++
	return nil
}
func (f *fakeBackend) Draw(item drawItem) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws = append(f.draws, item)
	return nil
}
func (f *fakeBackend) EndFrame() error {
	f.ended++
	return f.endErr
}
func (f *fakeBackend) Present() { f.presented++ }
func (f *fakeBackend) Release() { f.released++ }

func newTestRenderer(t *testing.T, fb *fakeBackend) *renderer {
	t.Helper()
	r := newRenderer(BackendTypeWGPU, WithLogger(zap.NewNop()))
	r.backend = fb
	if err := r.Resize(800, 800); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	return r
}

func newTestCamera() camera.Camera {
	ctrl := camera.NewCameraController(camera.WithPosition(mgl32.Vec3{0, 0, 5}))
	return camera.NewCamera(camera.WithController(ctrl), camera.WithAspect(1))
}

func triangle(mat *model.Material) *model.Mesh {
	return &model.Mesh{
		Name: "triangle",
		Primitives: []*model.Primitive{{
			Positions: []float32{-1, -1, 0, 1, -1, 0, 0, 1, 0},
			Indices:   []uint32{0, 1, 2},
			Material:  mat,
			Min:       mgl32.Vec3{-1, -1, 0},
			Max:       mgl32.Vec3{1, 1, 0},
		}},
	}
}

func meshNode(name string, z float32, mat *model.Material) *model.Node {
	n := model.NewNode(name, 0)
	n.Mesh = triangle(mat)
	n.Local.Translation = mgl32.Vec3{0, 0, z}
	return n
}

func TestRenderFrameNilRootPresentsEmptyFrame(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)

	if err := r.RenderFrame(nil, newTestCamera(), light.DefaultRig()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if fb.began != 1 || fb.ended != 1 || fb.presented != 1 {
		t.Errorf("began=%d ended=%d presented=%d, want 1 each", fb.began, fb.ended, fb.presented)
	}
	if len(fb.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(fb.draws))
	}
	if len(fb.cameraData) != 80 || len(fb.lightData) != light.UniformSize {
		t.Errorf("uniform sizes = %d, %d", len(fb.cameraData), len(fb.lightData))
	}
	if len(fb.configured) != 1 || fb.configured[0] != [2]int{800, 800} {
		t.Errorf("configured = %v", fb.configured)
	}
}

func TestRenderFrameCullsOutsideFrustum(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)

	root := model.NewNode("root", -1)
	visible := meshNode("visible", 0, nil)
	behind := meshNode("behind", 50, nil)
	root.AddChild(visible)
	root.AddChild(behind)

	if err := r.RenderFrame(root, newTestCamera(), light.DefaultRig()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if len(fb.draws) != 1 || fb.draws[0].node != visible {
		t.Fatalf("draws = %v, want only the visible node", fb.draws)
	}
	if got := r.Stats(); got != (FrameStats{Draws: 1, Culled: 1}) {
		t.Errorf("stats = %+v", got)
	}
	if fb.draws[0].material.Name != "default" {
		t.Errorf("material = %q, want the default material", fb.draws[0].material.Name)
	}
}

func TestBlendedDrawsFollowOpaqueFarthestFirst(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)

	glass := &model.Material{Name: "glass", BaseColor: [4]float32{1, 1, 1, 0.5}, AlphaMode: "BLEND"}
	root := model.NewNode("root", -1)
	near := meshNode("near", 1, glass)
	solid := meshNode("solid", 0, model.DefaultMaterial())
	far := meshNode("far", -3, glass)
	root.AddChild(near)
	root.AddChild(solid)
	root.AddChild(far)

	if err := r.RenderFrame(root, newTestCamera(), nil); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	want := []*model.Node{solid, far, near}
	if len(fb.draws) != len(want) {
		t.Fatalf("draws = %d, want %d", len(fb.draws), len(want))
	}
	for i, n := range want {
		if fb.draws[i].node != n {
			t.Errorf("draw %d = %s, want %s", i, fb.draws[i].node.Name, n.Name)
		}
	}
	if !fb.draws[1].variant.blend || fb.draws[0].variant.blend {
		t.Error("blend variants not selected from the material alpha mode")
	}
}

func TestDrawErrorClosesFrame(t *testing.T) {
	cause := errors.New("out of memory")
	fb := &fakeBackend{drawErr: cause}
	r := newTestRenderer(t, fb)

	root := model.NewNode("root", -1)
	root.AddChild(meshNode("mesh", 0, nil))

	err := r.RenderFrame(root, newTestCamera(), nil)
	var re *RenderError
	if !errors.As(err, &re) || re.Stage != StageDraw {
		t.Fatalf("err = %v, want a draw RenderError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("RenderError does not wrap the backend error")
	}
	if fb.ended != 1 || fb.presented != 1 {
		t.Errorf("ended=%d presented=%d, want the frame closed", fb.ended, fb.presented)
	}
}

func TestAcquireError(t *testing.T) {
	fb := &fakeBackend{beginErr: errors.New("surface lost")}
	r := newTestRenderer(t, fb)

	err := r.RenderFrame(nil, newTestCamera(), nil)
	var re *RenderError
	if !errors.As(err, &re) || re.Stage != StageAcquire {
		t.Fatalf("err = %v, want an acquire RenderError", err)
	}
	if fb.presented != 0 {
		t.Error("presented a frame that was never acquired")
	}
}

func TestZeroSizeSuspendsRendering(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)

	if err := r.Resize(0, 600); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if len(fb.configured) != 1 {
		t.Errorf("surface reconfigured for a zero size")
	}
	if err := r.RenderFrame(nil, newTestCamera(), nil); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if fb.began != 0 {
		t.Error("rendered while minimized")
	}
}

func TestRenderFrameWithoutCamera(t *testing.T) {
	r := newTestRenderer(t, &fakeBackend{})
	if err := r.RenderFrame(nil, nil, nil); !errors.Is(err, ErrNoCamera) {
		t.Errorf("err = %v, want ErrNoCamera", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)
	r.Release()
	r.Release()
	if fb.released != 1 {
		t.Errorf("backend released %d times, want 1", fb.released)
	}
	if err := r.RenderFrame(nil, newTestCamera(), nil); !errors.Is(err, ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

func TestClearColor(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(t, fb)

	white := colorful.Color{R: 1, G: 1, B: 1}
	r.SetClearColor(white)
	if r.ClearColor() != white {
		t.Errorf("clear color = %v", r.ClearColor())
	}
	if fb.clear != (wgpu.Color{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("backend clear = %+v", fb.clear)
	}
	if c := toWGPUColor(colorful.Color{}); c != (wgpu.Color{A: 1}) {
		t.Errorf("black = %+v", c)
	}
}

func TestSamplerDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		sampler model.TextureSampler
		mag     wgpu.FilterMode
		wrapU   wgpu.AddressMode
		wrapV   wgpu.AddressMode
		mipmap  wgpu.MipmapFilterMode
	}{
		{"defaults", model.TextureSampler{}, wgpu.FilterModeLinear, wgpu.AddressModeRepeat, wgpu.AddressModeRepeat, wgpu.MipmapFilterModeLinear},
		{"nearest clamp", model.TextureSampler{MagFilter: model.FilterNearest, MinFilter: model.FilterNearestMipmapNearest, WrapS: model.WrapClampToEdge, WrapT: model.WrapMirroredRepeat},
			wgpu.FilterModeNearest, wgpu.AddressModeClampToEdge, wgpu.AddressModeMirrorRepeat, wgpu.MipmapFilterModeNearest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := samplerDescriptor("test", tt.sampler)
			if d.MagFilter != tt.mag || d.AddressModeU != tt.wrapU || d.AddressModeV != tt.wrapV || d.MipmapFilter != tt.mipmap {
				t.Errorf("descriptor = %+v", d)
			}
		})
	}
}

func TestInterleaveVerticesDefaults(t *testing.T) {
	p := &model.Primitive{Positions: []float32{1, 2, 3}, Indices: []uint32{0}}
	buf := interleaveVertices(p)
	if len(buf) != vertexStride {
		t.Fatalf("len = %d, want %d", len(buf), vertexStride)
	}
	want := []float32{1, 2, 3, 0, 1, 0, 0, 0, 1, 1, 1, 1}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestDrawUniformFlags(t *testing.T) {
	mat := &model.Material{BaseColor: [4]float32{1, 0, 0, 1}, AlphaMode: "MASK", AlphaCutoff: 0.5, Unlit: true}
	world := mgl32.Translate3D(1, 2, 3)
	u := newDrawUniform(world, mat, true)

	if u.Flags != drawFlagTextured|drawFlagUnlit|drawFlagAlphaMask {
		t.Errorf("flags = %b", u.Flags)
	}
	if n := u.Normal.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3(); !n.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Errorf("translation changed a normal: %v", n)
	}
	if len(u.Marshal()) != drawUniformSize {
		t.Errorf("marshal size = %d", len(u.Marshal()))
	}

	plain := newDrawUniform(mgl32.Scale3D(0, 0, 0), model.DefaultMaterial(), false)
	if plain.Flags != 0 {
		t.Errorf("flags = %b, want 0", plain.Flags)
	}
}
