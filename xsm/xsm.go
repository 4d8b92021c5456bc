// Package xsm decodes XSM skeletal motion files.
package xsm

import (
	"io"
	"os"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

var HeaderSpec = emfx.HeaderSpec{Magic: "XSM ", MajorVersion: 1, MinorVersion: 0}

type ChunkType int32

const (
	ChunkMetadata      ChunkType = 201
	ChunkBoneAnimation ChunkType = 202
)

func (t ChunkType) String() string {
	switch t {
	case ChunkMetadata:
		return "metadata"
	case ChunkBoneAnimation:
		return "bone animation"
	}
	return "unknown"
}

type Option struct {
	Observer emfx.Observer
}

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
	d := emfx.NewDispatcher(p.opt.Observer)
	d.Register(int32(ChunkMetadata), ChunkMetadata.String(), doc.readMetadata)
	d.Register(int32(ChunkBoneAnimation), ChunkBoneAnimation.String(), doc.readBoneAnimation)
	if err := d.Run(rd); err != nil {
		return nil, err
	}
	return doc, nil
}

func Parse(r io.ReadSeeker) (*Document, error) {
	return NewParser(r, nil).Parse()
}

// Load decodes the XSM file at path.
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
