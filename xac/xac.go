// Package xac decodes XAC actor files: meshes, materials and the node hierarchy.
package xac

import (
	"io"
	"os"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// HeaderSpec is the only header revision this package reads.
var HeaderSpec = emfx.HeaderSpec{Magic: "XAC ", MajorVersion: 1, MinorVersion: 0}

type ChunkType int32

const (
	ChunkMesh               ChunkType = 1
	ChunkSkinning           ChunkType = 2
	ChunkMaterialDefinition ChunkType = 3
	ChunkShaderMaterial     ChunkType = 5
	ChunkMetadata           ChunkType = 7
	ChunkNodeHierarchy      ChunkType = 11
	ChunkMorphTarget        ChunkType = 12
	ChunkMaterialTotal      ChunkType = 13
)

var chunkNames = map[ChunkType]string{
	ChunkMesh:               "mesh",
	ChunkSkinning:           "skinning",
	ChunkMaterialDefinition: "material",
	ChunkShaderMaterial:     "shader material",
	ChunkMetadata:           "metadata",
	ChunkNodeHierarchy:      "node hierarchy",
	ChunkMorphTarget:        "morph target",
	ChunkMaterialTotal:      "material total",
}

func (t ChunkType) String() string {
	if s, ok := chunkNames[t]; ok {
		return s
	}
	return "unknown"
}

// Option configures a Parser. The zero value is usable.
type Option struct {
	// Observer receives header and per-chunk notifications. Defaults to emfx.NopObserver.
	Observer emfx.Observer
}

// Parser decodes one XAC stream.
type Parser struct {
	r   io.ReadSeeker
	opt Option
}

// NewParser returns a parser reading from r. opt may be nil.
func NewParser(r io.ReadSeeker, opt *Option) *Parser {
	p := &Parser{r: r}
	if opt != nil {
		p.opt = *opt
	}
	if p.opt.Observer == nil {
		p.opt.Observer = emfx.NopObserver
	}
	return p
}

// Parse decodes the whole stream. On error no document is returned.
func (p *Parser) Parse() (*Document, error) {
	rd, err := emfx.NewReader(p.r)
	if err != nil {
		return nil, err
	}
	h, err := emfx.ReadHeader(rd, HeaderSpec)
	if err != nil {
		return nil, err
	}
	p.opt.Observer.HeaderRead(h)

	doc := &Document{Header: h}
	dec := &decoder{doc: doc, observer: p.opt.Observer}
	d := emfx.NewDispatcher(p.opt.Observer)
	register := func(t ChunkType, fn emfx.DecodeFunc) {
		d.Register(int32(t), t.String(), fn)
	}
	register(ChunkMesh, dec.readMesh)
	register(ChunkSkinning, nil)
	register(ChunkMaterialDefinition, dec.readMaterial)
	register(ChunkShaderMaterial, dec.readShaderMaterial)
	register(ChunkMetadata, dec.readMetadata)
	register(ChunkNodeHierarchy, dec.readNodeHierarchy)
	register(ChunkMorphTarget, nil)
	register(ChunkMaterialTotal, dec.readMaterialTotal)

	if err := d.Run(rd); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes an XAC stream with default options.
func Parse(r io.ReadSeeker) (*Document, error) {
	return NewParser(r, nil).Parse()
}

// Load decodes the XAC file at path.
func Load(path string) (*Document, error) {
	return LoadWithOption(path, nil)
}

func LoadWithOption(path string, opt *Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &emfx.IOError{Op: "open " + path, Err: err}
	}
	defer f.Close()
	return NewParser(f, opt).Parse()
}

// decoder collects chunk results into doc.
type decoder struct {
	doc      *Document
	observer emfx.Observer
}
