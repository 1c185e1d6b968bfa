package light

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultRig(t *testing.T) {
	r := DefaultRig()

	if amb := r.Ambient(); !amb.ApproxEqual(mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("ambient = %v, want 0.5 white", amb)
	}
	active := r.Active()
	if len(active) != 1 || active[0].Type() != LightTypeDirectional {
		t.Fatalf("active lights = %v, want one directional", active)
	}
	want := mgl32.Vec3{-1, 0, -2}.Normalize()
	if d := active[0].Direction(); !d.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("direction = %v, want %v", d, want)
	}
	if rad := active[0].Radiance(); !rad.ApproxEqual(mgl32.Vec3{1, 1, 1}) {
		t.Errorf("radiance = %v, want white", rad)
	}
}

func TestDirectionWithoutOffsetPointsDown(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(mgl32.Vec3{}), WithTarget(mgl32.Vec3{}))
	if d := l.Direction(); d != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("direction = %v, want straight down", d)
	}
}

func TestRigSkipsDisabledLights(t *testing.T) {
	r := Rig{
		NewLight(LightTypeAmbient, WithIntensity(0.25)),
		NewLight(LightTypeAmbient, WithIntensity(0.25), WithEnabled(false)),
		NewLight(LightTypePoint, WithEnabled(false)),
		nil,
	}
	if amb := r.Ambient(); !amb.ApproxEqual(mgl32.Vec3{0.25, 0.25, 0.25}) {
		t.Errorf("ambient = %v", amb)
	}
	if n := len(r.Active()); n != 0 {
		t.Errorf("got %d active lights, want 0", n)
	}
}

func TestMarshalRig(t *testing.T) {
	r := DefaultRig()
	for range MaxGPULights + 2 {
		r = append(r, NewLight(LightTypePoint, WithColor(mgl32.Vec3{1, 0, 0}), WithIntensity(2)))
	}

	buf := MarshalRig(r)
	if len(buf) != UniformSize || UniformSize != 16+MaxGPULights*48 {
		t.Fatalf("buffer size = %d, want %d", len(buf), 16+MaxGPULights*48)
	}
	if amb := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); amb != 0.5 {
		t.Errorf("ambient red = %v, want 0.5", amb)
	}
	if n := binary.LittleEndian.Uint32(buf[12:]); n != MaxGPULights {
		t.Errorf("light count = %d, want %d", n, MaxGPULights)
	}
	if typ := binary.LittleEndian.Uint32(buf[16+12:]); typ != uint32(LightTypeDirectional) {
		t.Errorf("first light type = %d, want directional", typ)
	}
	second := 16 + 48
	if red := math.Float32frombits(binary.LittleEndian.Uint32(buf[second+16:])); red != 2 {
		t.Errorf("second light radiance red = %v, want 2", red)
	}
}

func TestParseLightType(t *testing.T) {
	for _, typ := range []LightType{LightTypeAmbient, LightTypeDirectional, LightTypePoint} {
		got, err := ParseLightType(" " + strings.ToUpper(typ.String()))
		if err != nil || got != typ {
			t.Errorf("ParseLightType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseLightType("spot"); err == nil {
		t.Error("spot parsed without error")
	}
}
