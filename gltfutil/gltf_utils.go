package gltfutil

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Load reads a .glb or .gltf file together with its external buffers.
func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// Save writes doc as binary glTF for .glb and as JSON glTF for .gltf.
func Save(doc *gltf.Document, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		// the first buffer becomes the BIN chunk
		if len(doc.Buffers) > 0 && len(doc.Buffers[0].Data) > 0 {
			doc.Buffers[0].URI = ""
		}
		return gltf.SaveBinary(doc, path)
	case ".gltf":
		for _, b := range doc.Buffers {
			if b.URI == "" && len(b.Data) > 0 {
				b.EmbeddedResource()
			}
		}
		return gltf.Save(doc, path)
	}
	return fmt.Errorf("unsupported output type: %v", filepath.Ext(path))
}

var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// EmbedImages moves images referenced by a URI relative to srcDir into buffer views.
// Images that cannot be read or have no glTF mime type are left as they are.
func EmbedImages(doc *gltf.Document, srcDir string) int {
	embedded := 0
	for _, m := range doc.Images {
		if m.BufferView != nil || m.URI == "" || strings.HasPrefix(m.URI, "data:") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(m.URI))
		mime := m.MimeType
		if mime == "" {
			mime = imageMimeTypes[ext]
		}
		if mime == "" {
			log.Print("not embedding ", m.URI, ": unsupported image type")
			continue
		}
		buf, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(m.URI)))
		if err != nil {
			log.Print(err)
			continue
		}
		m.MimeType = mime
		m.BufferView = gltf.Index(modeler.WriteBufferView(doc, gltf.TargetNone, buf))
		m.URI = ""
		embedded++
	}
	if embedded > 0 {
		for _, b := range doc.Buffers {
			if len(b.Data) > 0 {
				b.ByteLength = uint32(len(b.Data))
			}
		}
	}
	return embedded
}
