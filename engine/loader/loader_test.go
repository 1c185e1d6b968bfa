package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// triangleBin returns the binary buffer shared by the test documents:
// three positions, three uint16 indices, two keyframe times and two translation values.
func triangleBin(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	write([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	write([]uint16{0, 1, 2})
	write([]uint16{0})
	write([]float32{0, 1})
	write([]float32{0, 0, 0, 1, 0, 0})
	if buf.Len() != 76 {
		t.Fatalf("test buffer is %d bytes, want 76", buf.Len())
	}
	return buf.Bytes()
}

// triangleDoc returns a one-node, one-clip document. An empty bufferURI means the GLB BIN chunk.
func triangleDoc(bufferURI string) map[string]any {
	buffer := map[string]any{"byteLength": 76}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset":  map[string]any{"version": "2.0", "generator": "loader_test"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{map[string]any{
			"name":        "Cube",
			"mesh":        0,
			"translation": []float32{1, 2, 3},
		}},
		"meshes": []any{map[string]any{
			"name": "Tri",
			"primitives": []any{map[string]any{
				"attributes": map[string]int{"POSITION": 0},
				"indices":    1,
			}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
			map[string]any{"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC3"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
			map[string]any{"buffer": 0, "byteOffset": 44, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 52, "byteLength": 24},
		},
		"buffers": []any{buffer},
		"animations": []any{map[string]any{
			"name":     "Slide",
			"channels": []any{map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}}},
			"samplers": []any{map[string]any{"input": 2, "output": 3}},
		}},
	}
}

// buildGLB packs a JSON document and binary chunk into a GLB container.
func buildGLB(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin = append([]byte(nil), bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	for _, v := range []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total), uint32(len(js)), gltfGLBChunkJSON} {
		_ = binary.Write(&out, binary.LittleEndian, v)
	}
	out.Write(js)
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(bin)))
	_ = binary.Write(&out, binary.LittleEndian, uint32(gltfGLBChunkBIN))
	out.Write(bin)
	return out.Bytes()
}

func mustJSON(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return js
}

// checkTriangleAsset verifies the asset decoded from triangleDoc.
func checkTriangleAsset(t *testing.T, asset *model.SceneAsset) {
	t.Helper()

	if len(asset.Nodes) != 1 || len(asset.Root.Children) != 1 {
		t.Fatalf("got %d nodes and %d roots, want 1 and 1", len(asset.Nodes), len(asset.Root.Children))
	}
	cube := asset.Root.Find("Cube")
	if cube == nil {
		t.Fatal("node Cube not found under root")
	}
	if cube.Rest.Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("rest translation = %v, want [1 2 3]", cube.Rest.Translation)
	}
	if cube.Local != cube.Rest {
		t.Errorf("local pose %v differs from rest %v", cube.Local, cube.Rest)
	}

	if cube.Mesh == nil || len(cube.Mesh.Primitives) != 1 {
		t.Fatal("node Cube has no triangle primitive")
	}
	prim := cube.Mesh.Primitives[0]
	if prim.VertexCount() != 3 {
		t.Errorf("vertex count = %d, want 3", prim.VertexCount())
	}
	if len(prim.Indices) != 3 || prim.Indices[0] != 0 || prim.Indices[1] != 1 || prim.Indices[2] != 2 {
		t.Errorf("indices = %v, want [0 1 2]", prim.Indices)
	}
	if len(prim.Normals) != 9 || prim.Normals[0] != 0 || prim.Normals[1] != 0 || prim.Normals[2] != 1 {
		t.Errorf("generated normals = %v, want +Z", prim.Normals)
	}
	if prim.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("bounds max = %v, want [1 1 0]", prim.Max)
	}

	if len(asset.Clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(asset.Clips))
	}
	clip := asset.Clips[0]
	if clip.Name != "Slide" || clip.Duration != 1 {
		t.Errorf("clip = %q (%v s), want Slide (1 s)", clip.Name, clip.Duration)
	}
	if len(clip.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(clip.Tracks))
	}
	tr := clip.Tracks[0]
	if tr.Node != 0 || tr.Path != model.PathTranslation || tr.Components != 3 || tr.Interpolation != model.InterpolationLinear {
		t.Errorf("track = %+v", tr)
	}
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	glb := buildGLB(t, triangleDoc(""), triangleBin(t))

	asset, err := l.LoadReader("tri.glb", bytes.NewReader(glb), "")
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	checkTriangleAsset(t, asset)

	if asset.Generator != "loader_test" || asset.Version != "2.0" {
		t.Errorf("header = %q %q", asset.Generator, asset.Version)
	}
	if l.Get("tri.glb") != asset {
		t.Error("asset was not cached under its name")
	}
}

func TestLoadGLTFWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBin(t), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "tri.gltf")
	if err := os.WriteFile(path, mustJSON(t, triangleDoc("tri.bin")), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkTriangleAsset(t, asset)
	if asset.Name != "tri.gltf" {
		t.Errorf("asset name = %q, want tri.gltf", asset.Name)
	}

	again, err := l.Load(context.Background(), path)
	if err != nil || again != asset {
		t.Errorf("second Load returned %p, %v; want cached %p", again, err, asset)
	}
}

func TestLoadGLTFWithDataURIBuffer(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBin(t))
	l := NewLoader(BackendTypeGLTF)

	asset, err := l.LoadReader("inline", bytes.NewReader(mustJSON(t, triangleDoc(uri))), "")
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	checkTriangleAsset(t, asset)
}

func TestLoadOverHTTP(t *testing.T) {
	bin := triangleBin(t)
	doc := mustJSON(t, triangleDoc("tri.bin"))
	mux := http.NewServeMux()
	mux.HandleFunc("/models/tri.gltf", func(w http.ResponseWriter, r *http.Request) { w.Write(doc) })
	mux.HandleFunc("/models/tri.bin", func(w http.ResponseWriter, r *http.Request) { w.Write(bin) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader(BackendTypeGLTF, WithHTTPClient(srv.Client()))

	asset, err := l.Load(context.Background(), srv.URL+"/models/tri.gltf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkTriangleAsset(t, asset)

	_, err = l.Load(context.Background(), srv.URL+"/models/missing.glb")
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("missing asset error = %v, want ErrHTTPStatus", err)
	}
}

func TestLoadErrors(t *testing.T) {
	unsupportedExt := triangleDoc("")
	unsupportedExt["extensionsRequired"] = []string{"KHR_draco_mesh_compression"}
	supportedExt := triangleDoc("")
	supportedExt["extensionsRequired"] = []string{"KHR_materials_unlit"}
	oldVersion := triangleDoc("")
	oldVersion["asset"] = map[string]any{"version": "1.0"}

	badGLBVersion := buildGLB(t, triangleDoc(""), triangleBin(t))
	binary.LittleEndian.PutUint32(badGLBVersion[4:], 1)
	truncated := buildGLB(t, triangleDoc(""), triangleBin(t))
	truncated = truncated[:len(truncated)-10]

	negativeView := triangleDoc("")
	negativeView["bufferViews"].([]any)[0] = map[string]any{"buffer": 0, "byteOffset": 8, "byteLength": -4}
	hugeCount := triangleDoc("")
	hugeCount["accessors"].([]any)[0] = map[string]any{"bufferView": 0, "componentType": 5126, "count": 1 << 60, "type": "VEC3"}
	hugeUnbacked := triangleDoc("")
	hugeUnbacked["accessors"].([]any)[0] = map[string]any{"componentType": 5126, "count": 1 << 60, "type": "VEC3"}

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"not an asset", []byte("hello world"), ErrUnsupportedFormat},
		{"glb version 1", badGLBVersion, ErrInvalidGLBVersion},
		{"truncated glb", truncated, ErrTruncatedGLB},
		{"gltf version 1.0", mustJSON(t, oldVersion), ErrUnsupportedVersion},
		{"required draco", buildGLB(t, unsupportedExt, triangleBin(t)), ErrUnsupportedExtension},
		{"short buffer", buildGLB(t, triangleDoc(""), triangleBin(t)[:40]), ErrBufferSizeMismatch},
		{"negative view length", buildGLB(t, negativeView, triangleBin(t)), ErrIndexOutOfRange},
		{"huge accessor count", buildGLB(t, hugeCount, triangleBin(t)), ErrIndexOutOfRange},
		{"huge count without view", buildGLB(t, hugeUnbacked, triangleBin(t)), ErrInvalidAccessor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF)
			asset, err := l.LoadReader(tc.name, bytes.NewReader(tc.data), "")
			if asset != nil {
				t.Fatal("expected no asset")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			var le *LoadError
			if !errors.As(err, &le) || le.URL != tc.name {
				t.Fatalf("error %v is not a *LoadError for %q", err, tc.name)
			}
			if l.Get(tc.name) != nil {
				t.Fatal("failed load was cached")
			}
		})
	}

	l := NewLoader(BackendTypeGLTF)
	if _, err := l.LoadReader("unlit", bytes.NewReader(buildGLB(t, supportedExt, triangleBin(t))), ""); err != nil {
		t.Fatalf("supported required extension rejected: %v", err)
	}
}

// panicBackend fails every decode by panicking.
type panicBackend struct{}

func (panicBackend) Decode(context.Context, string, []byte, resourceResolver) (*model.SceneAsset, error) {
	panic("bad accessor")
}

func TestDecoderPanicBecomesLoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.glb")
	if err := os.WriteFile(path, buildGLB(t, triangleDoc(""), triangleBin(t)), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF, WithWorkers(1))
	l.(*loader).backend = panicBackend{}

	_, err := l.LoadReader("tri.glb", bytes.NewReader([]byte("{}")), "")
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, ErrDecoderPanic) {
		t.Fatalf("LoadReader error = %v, want a *LoadError wrapping ErrDecoderPanic", err)
	}

	failed := make(chan *LoadError, 1)
	l.LoadAsync(path, func(*model.SceneAsset) { t.Error("panicking decode reported success") }, func(e *LoadError) { failed <- e })
	select {
	case e := <-failed:
		if !errors.Is(e, ErrDecoderPanic) {
			t.Errorf("LoadAsync error = %v, want ErrDecoderPanic", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for LoadAsync failure")
	}
}

func TestCheckSpan(t *testing.T) {
	cases := []struct {
		name                                  string
		offset, stride, elemSize, count, size int
		ok                                    bool
	}{
		{"exact fit", 0, 12, 12, 3, 36, true},
		{"strided", 4, 16, 12, 2, 32, true},
		{"one byte short", 0, 12, 12, 3, 35, false},
		{"empty", 100, 12, 12, 0, 0, true},
		{"negative offset", -4, 12, 12, 1, 36, false},
		{"negative count", 0, 12, 12, -1, 36, false},
		{"overflowing count", 0, 12, 12, 1 << 60, 36, false},
	}
	for _, tc := range cases {
		err := checkSpan(tc.offset, tc.stride, tc.elemSize, tc.count, tc.size)
		if (err == nil) != tc.ok {
			t.Errorf("%s: checkSpan = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func TestLoadAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.glb")
	if err := os.WriteFile(path, buildGLB(t, triangleDoc(""), triangleBin(t)), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF, WithWorkers(2))

	loaded := make(chan *model.SceneAsset, 1)
	failed := make(chan *LoadError, 1)
	l.LoadAsync(path, func(a *model.SceneAsset) { loaded <- a }, func(e *LoadError) { failed <- e })

	select {
	case a := <-loaded:
		checkTriangleAsset(t, a)
	case e := <-failed:
		t.Fatalf("unexpected load error: %v", e)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for LoadAsync")
	}

	missing := filepath.Join(dir, "missing.glb")
	l.LoadAsync(missing, func(a *model.SceneAsset) { loaded <- a }, func(e *LoadError) { failed <- e })

	select {
	case a := <-loaded:
		t.Fatalf("missing asset loaded: %v", a.Name)
	case e := <-failed:
		if e.URL != missing {
			t.Errorf("LoadError.URL = %q, want %q", e.URL, missing)
		}
		if !errors.Is(e, os.ErrNotExist) {
			t.Errorf("LoadError = %v, want wrapped os.ErrNotExist", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for LoadAsync failure")
	}
}

func TestReadComponentNormalization(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
		ct   int
		want float32
	}{
		{"ubyte max", []byte{255}, gltfComponentTypeUnsignedByte, 1},
		{"ubyte zero", []byte{0}, gltfComponentTypeUnsignedByte, 0},
		{"byte min clamps", []byte{0x80}, gltfComponentTypeByte, -1},
		{"byte max", []byte{127}, gltfComponentTypeByte, 1},
		{"ushort max", []byte{0xff, 0xff}, gltfComponentTypeUnsignedShort, 1},
		{"short min clamps", []byte{0x00, 0x80}, gltfComponentTypeShort, -1},
	}
	for _, tc := range cases {
		if got := readComponent(tc.b, tc.ct, true); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if got := readComponent([]byte{200}, gltfComponentTypeUnsignedByte, false); got != 200 {
		t.Errorf("unnormalized ubyte = %v, want 200", got)
	}
}

func TestSparseAccessor(t *testing.T) {
	// base: 3 scalars [1 2 3]; sparse replaces index 2 with 9
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, []float32{1, 2, 3})
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{2, 0})
	_ = binary.Write(&buf, binary.LittleEndian, []float32{9})

	doc := map[string]any{
		"asset":   map[string]any{"version": "2.0"},
		"buffers": []any{map[string]any{"byteLength": buf.Len()}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 12},
			map[string]any{"buffer": 0, "byteOffset": 12, "byteLength": 2},
			map[string]any{"buffer": 0, "byteOffset": 16, "byteLength": 4},
		},
		"accessors": []any{map[string]any{
			"bufferView": 0, "componentType": 5126, "count": 3, "type": "SCALAR",
			"sparse": map[string]any{
				"count":   1,
				"indices": map[string]any{"bufferView": 1, "componentType": 5123},
				"values":  map[string]any{"bufferView": 2},
			},
		}},
	}

	p := newGLTFParser(nil)
	if err := p.Parse(context.Background(), buildGLB(t, doc, buf.Bytes())); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, comps, err := p.ReadFloatAccessor(0)
	if err != nil {
		t.Fatalf("ReadFloatAccessor: %v", err)
	}
	if comps != 1 || len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 9 {
		t.Fatalf("sparse accessor = %v (%d comps), want [1 2 9]", got, comps)
	}

	if _, _, err := p.ReadFloatAccessor(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("out of range accessor error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestTextureSourcePrefersWebP(t *testing.T) {
	core, webp := 0, 1
	tests := []struct {
		name string
		tex  gltfTexture
		want *int
	}{
		{"core only", gltfTexture{Source: &core}, &core},
		{"webp", gltfTexture{Source: &core, Extensions: map[string]json.RawMessage{
			extTextureWebP: json.RawMessage(`{"source": 1}`),
		}}, &webp},
		{"webp without source", gltfTexture{Source: &core, Extensions: map[string]json.RawMessage{
			extTextureWebP: json.RawMessage(`{}`),
		}}, &core},
		{"no source", gltfTexture{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textureSource(&tt.tex)
			if err != nil {
				t.Fatal(err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("source = %v, want %v", got, tt.want)
			}
		})
	}

	bad := gltfTexture{Extensions: map[string]json.RawMessage{extTextureWebP: json.RawMessage(`[`)}}
	if _, err := textureSource(&bad); err == nil {
		t.Error("malformed extension accepted")
	}
}
