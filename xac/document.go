package xac

import "github.com/R-Hidayatullah/tos-parser/emfx"

// Document is a fully decoded XAC file. It owns every record it contains;
// records refer to each other by index only.
type Document struct {
	Header          emfx.Header       `yaml:"header"`
	Metadata        Metadata          `yaml:"metadata"`
	Meshes          []*Mesh           `yaml:"meshes,omitempty"`
	Materials       []*Material       `yaml:"materials,omitempty"`
	ShaderMaterials []*ShaderMaterial `yaml:"shaderMaterials,omitempty"`
	MaterialTotal   *MaterialTotal    `yaml:"materialTotal,omitempty"`
	Nodes           *NodeHierarchy    `yaml:"nodes,omitempty"`
}

// Metadata records export provenance.
type Metadata struct {
	RepositionMask       uint32  `yaml:"repositionMask"`
	RepositioningNode    int32   `yaml:"repositioningNode"`
	ExporterMajorVersion uint8   `yaml:"exporterMajorVersion"`
	ExporterMinorVersion uint8   `yaml:"exporterMinorVersion"`
	RetargetRootOffset   float32 `yaml:"retargetRootOffset"`
	SourceApp            string  `yaml:"sourceApp"`
	OriginalFilename     string  `yaml:"originalFilename"`
	ExportDate           string  `yaml:"exportDate"`
	ActorName            string  `yaml:"actorName"`
}

type MaterialTotal struct {
	NumTotalMaterials    int32 `yaml:"numTotalMaterials"`
	NumStandardMaterials int32 `yaml:"numStandardMaterials"`
	NumFXMaterials       int32 `yaml:"numFxMaterials"`
}

// NodeByName returns the index of the first node called name, or -1.
func (d *Document) NodeByName(name string) int {
	if d.Nodes == nil {
		return -1
	}
	for i, n := range d.Nodes.Nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

func (d *decoder) readMetadata(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	m := &d.doc.Metadata
	m.RepositionMask = r.Uint32()
	m.RepositioningNode = r.Int32()
	m.ExporterMajorVersion = r.Uint8()
	m.ExporterMinorVersion = r.Uint8()
	r.Skip(2)
	m.RetargetRootOffset = r.Float32()
	m.SourceApp = r.ReadString()
	m.OriginalFilename = r.ReadString()
	m.ExportDate = r.ReadString()
	m.ActorName = r.ReadString()
	return r.Err()
}

func (d *decoder) readMaterialTotal(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	t := &MaterialTotal{
		NumTotalMaterials:    r.Int32(),
		NumStandardMaterials: r.Int32(),
		NumFXMaterials:       r.Int32(),
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.doc.MaterialTotal = t
	return nil
}
