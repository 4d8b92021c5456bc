package xsm

import "github.com/R-Hidayatullah/tos-parser/emfx"

type Document struct {
	Header        emfx.Header    `yaml:"header"`
	Metadata      Metadata       `yaml:"metadata"`
	BoneAnimation *BoneAnimation `yaml:"boneAnimation,omitempty"`
}

type Metadata struct {
	Unused               float32 `yaml:"unused"`
	MaxAcceptableError   float32 `yaml:"maxAcceptableError"`
	FPS                  int32   `yaml:"fps"`
	ExporterMajorVersion uint8   `yaml:"exporterMajorVersion"`
	ExporterMinorVersion uint8   `yaml:"exporterMinorVersion"`
	SourceApp            string  `yaml:"sourceApp"`
	OriginalFilename     string  `yaml:"originalFilename"`
	ExportDate           string  `yaml:"exportDate"`
	MotionName           string  `yaml:"motionName"`
}

// Submotion returns the track animating the named node, or nil.
func (d *Document) Submotion(nodeName string) *Submotion {
	if d.BoneAnimation == nil {
		return nil
	}
	for i := range d.BoneAnimation.Submotions {
		if d.BoneAnimation.Submotions[i].NodeName == nodeName {
			return &d.BoneAnimation.Submotions[i]
		}
	}
	return nil
}

// Duration returns the largest key time over all submotions.
func (d *Document) Duration() float32 {
	var t float32
	if d.BoneAnimation == nil {
		return 0
	}
	for i := range d.BoneAnimation.Submotions {
		if e := d.BoneAnimation.Submotions[i].EndTime(); e > t {
			t = e
		}
	}
	return t
}

func (d *Document) readMetadata(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	m := &d.Metadata
	m.Unused = r.Float32()
	m.MaxAcceptableError = r.Float32()
	m.FPS = r.Int32()
	m.ExporterMajorVersion = r.Uint8()
	m.ExporterMinorVersion = r.Uint8()
	r.Skip(2)
	m.SourceApp = r.ReadString()
	m.OriginalFilename = r.ReadString()
	m.ExportDate = r.ReadString()
	m.MotionName = r.ReadString()
	return r.Err()
}
