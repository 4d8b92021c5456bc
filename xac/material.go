package xac

import (
	"fmt"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// MapType tells what a material layer's texture is used for.
type MapType uint8

const (
	MapUnknown MapType = iota
	MapAmbient
	MapDiffuse
	MapSpecular
	MapOpacity
	MapBump
	MapSelfIllumination
	MapShine
	MapShineStrength
	MapFilterColor
	MapReflect
	MapRefract
	MapEnvironment
	MapDisplacement
)

var mapTypeNames = [...]string{
	"unknown", "ambient", "diffuse", "specular", "opacity", "bump", "self illumination",
	"shine", "shine strength", "filter color", "reflect", "refract", "environment", "displacement",
}

func (t MapType) String() string {
	if int(t) < len(mapTypeNames) {
		return mapTypeNames[t]
	}
	return fmt.Sprintf("map(%d)", uint8(t))
}

type Material struct {
	AmbientColor  emfx.Vec4       `yaml:"ambientColor,flow"`
	DiffuseColor  emfx.Vec4       `yaml:"diffuseColor,flow"`
	SpecularColor emfx.Vec4       `yaml:"specularColor,flow"`
	EmissiveColor emfx.Vec4       `yaml:"emissiveColor,flow"`
	Shine         float32         `yaml:"shine"`
	ShineStrength float32         `yaml:"shineStrength"`
	Opacity       float32         `yaml:"opacity"`
	IOR           float32         `yaml:"ior"`
	DoubleSided   bool            `yaml:"doubleSided"`
	Wireframe     bool            `yaml:"wireframe"`
	NumLayers     uint8           `yaml:"numLayers"`
	Name          string          `yaml:"name"`
	Layers        []MaterialLayer `yaml:"layers,omitempty"`
}

// Layer returns the first texture layer of type t, or nil.
func (m *Material) Layer(t MapType) *MaterialLayer {
	for i := range m.Layers {
		if m.Layers[i].MapType == t {
			return &m.Layers[i]
		}
	}
	return nil
}

type MaterialLayer struct {
	Amount          float32 `yaml:"amount"`
	UOffset         float32 `yaml:"uOffset"`
	VOffset         float32 `yaml:"vOffset"`
	UTiling         float32 `yaml:"uTiling"`
	VTiling         float32 `yaml:"vTiling"`
	RotationRadians float32 `yaml:"rotationRadians"`
	MaterialID      int16   `yaml:"materialId"`
	MapType         MapType `yaml:"mapType"`
	Texture         string  `yaml:"texture"`
}

type IntProperty struct {
	Name  string `yaml:"name"`
	Value int32  `yaml:"value"`
}

type FloatProperty struct {
	Name  string  `yaml:"name"`
	Value float32 `yaml:"value"`
}

type BoolProperty struct {
	Name  string `yaml:"name"`
	Value bool   `yaml:"value"`
}

type StringProperty struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ShaderMaterial is a material described by named shader parameters.
type ShaderMaterial struct {
	Flags            uint8            `yaml:"flags"`
	Name             string           `yaml:"name"`
	ShaderName       string           `yaml:"shaderName"`
	IntProperties    []IntProperty    `yaml:"intProperties,omitempty"`
	FloatProperties  []FloatProperty  `yaml:"floatProperties,omitempty"`
	BoolProperties   []BoolProperty   `yaml:"boolProperties,omitempty"`
	StringProperties []StringProperty `yaml:"stringProperties,omitempty"`
}

// StringProperty returns the value of the named string property.
func (m *ShaderMaterial) StringProperty(name string) (string, bool) {
	for _, p := range m.StringProperties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (m *ShaderMaterial) FloatProperty(name string) (float32, bool) {
	for _, p := range m.FloatProperties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

func (m *ShaderMaterial) BoolProperty(name string) (bool, bool) {
	for _, p := range m.BoolProperties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return false, false
}

func (d *decoder) readMaterial(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	m := &Material{
		AmbientColor:  r.Vec4(),
		DiffuseColor:  r.Vec4(),
		SpecularColor: r.Vec4(),
		EmissiveColor: r.Vec4(),
		Shine:         r.Float32(),
		ShineStrength: r.Float32(),
		Opacity:       r.Float32(),
		IOR:           r.Float32(),
		DoubleSided:   r.Bool(),
		Wireframe:     r.Bool(),
	}
	r.Skip(1)
	m.NumLayers = r.Uint8()
	m.Name = r.ReadString()
	for i := 0; i < int(m.NumLayers) && r.Err() == nil; i++ {
		l := MaterialLayer{
			Amount:          r.Float32(),
			UOffset:         r.Float32(),
			VOffset:         r.Float32(),
			UTiling:         r.Float32(),
			VTiling:         r.Float32(),
			RotationRadians: r.Float32(),
			MaterialID:      r.Int16(),
			MapType:         MapType(r.Uint8()),
		}
		r.Skip(1)
		l.Texture = r.ReadString()
		m.Layers = append(m.Layers, l)
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.doc.Materials = append(d.doc.Materials, m)
	return nil
}

func (d *decoder) readShaderMaterial(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	numInts := r.Count("int properties")
	numFloats := r.Count("float properties")
	numBools := r.Count("bool properties")
	numStrings := r.Count("string properties")
	m := &ShaderMaterial{Flags: r.Uint8()}
	r.Skip(3)
	m.Name = r.ReadString()
	m.ShaderName = r.ReadString()

	for i := 0; i < numInts && r.Err() == nil; i++ {
		m.IntProperties = append(m.IntProperties, IntProperty{Name: r.ReadString(), Value: r.Int32()})
	}
	for i := 0; i < numFloats && r.Err() == nil; i++ {
		m.FloatProperties = append(m.FloatProperties, FloatProperty{Name: r.ReadString(), Value: r.Float32()})
	}
	for i := 0; i < numBools && r.Err() == nil; i++ {
		m.BoolProperties = append(m.BoolProperties, BoolProperty{Name: r.ReadString(), Value: r.Bool()})
	}
	// reserved region between the bool and string properties
	r.Skip(int64(r.Count("reserved bytes")))
	for i := 0; i < numStrings && r.Err() == nil; i++ {
		m.StringProperties = append(m.StringProperties, StringProperty{Name: r.ReadString(), Value: r.ReadString()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.doc.ShaderMaterials = append(d.doc.ShaderMaterials, m)
	return nil
}
