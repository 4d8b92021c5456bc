package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/gif"

	"github.com/HugoSmits86/nativewebp"
	"github.com/blezek/tga"
	_ "github.com/ftrvxmtrx/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// DefaultTextureExtensions is the lookup order used when a material names a
// texture whose file was converted or renamed on disk.
var DefaultTextureExtensions = []string{".png", ".tga", ".bmp", ".psd", ".jpg", ".jpeg", ".dds"}

// textureIndex maps lower-case texture stems to files under a directory.
type textureIndex struct {
	entries map[string][]string // stem -> paths
	exts    []string
}

func buildTextureIndex(dir string, exts []string) *textureIndex {
	idx := &textureIndex{entries: map[string][]string{}, exts: exts}
	if dir == "" {
		return idx
	}
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if extRank(exts, filepath.Ext(path)) < 0 {
			return nil
		}
		stem := textureStem(path)
		idx.entries[stem] = append(idx.entries[stem], path)
		return nil
	})
	return idx
}

func textureStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func extRank(exts []string, ext string) int {
	ext = strings.ToLower(ext)
	for i, e := range exts {
		if e == ext {
			return i
		}
	}
	return -1
}

// resolve returns the preferred file for a texture name as written in the model.
func (idx *textureIndex) resolve(name string) (string, bool) {
	best, rank := "", len(idx.exts)
	for _, p := range idx.entries[textureStem(name)] {
		if r := extRank(idx.exts, filepath.Ext(p)); r >= 0 && r < rank {
			best, rank = p, r
		}
	}
	return best, best != ""
}

type textureCache struct {
	index    *textureIndex
	mu       sync.Mutex
	textures map[string]*textureInfo
}

type textureInfo struct {
	name string
	path string
	id   *uint32
	img  image.Image
	err  error
}

func newTextureCache(srcDir string, exts []string) *textureCache {
	if len(exts) == 0 {
		exts = DefaultTextureExtensions
	}
	return &textureCache{
		index:    buildTextureIndex(srcDir, exts),
		textures: map[string]*textureInfo{},
	}
}

func (c *textureCache) get(name string) *textureInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := textureStem(name)
	if t, ok := c.textures[key]; ok {
		return t
	}
	t := &textureInfo{name: name}
	if p, ok := c.index.resolve(name); ok {
		t.path = p
	} else {
		t.err = fmt.Errorf("texture not found: %s", name)
	}
	c.textures[key] = t
	return t
}

func (c *textureCache) getImage(name string) (image.Image, error) {
	t := c.get(name)
	if t.img != nil || t.err != nil {
		return t.img, t.err
	}

	f, err := os.Open(t.path)
	if err != nil {
		t.err = err
		return nil, err
	}
	defer f.Close()

	t.img, _, t.err = image.Decode(f)
	if t.err != nil && strings.ToLower(filepath.Ext(t.path)) == ".tga" {
		// retry
		f.Seek(0, io.SeekStart)
		t.img, t.err = tga.Decode(f)
	}
	return t.img, t.err
}

func (c *textureCache) hasAlpha(name string) bool {
	if name == "" {
		return false
	}
	img, err := c.getImage(name)
	if err != nil {
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// scaleTexture decodes a texture, shrinks it to fit the limits and encodes it as mime.
func scaleTexture(name string, mime string, textures *textureCache, scale float32, limit int) (io.Reader, error) {
	img, err := textures.getImage(name)
	if err != nil {
		return nil, err
	}
	rect := img.Bounds()

	if limit > 0 {
		sz := int(float32(rect.Dx()) * scale)
		if h := int(float32(rect.Dy()) * scale); h > sz {
			sz = h
		}
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}

	if scale != 1.0 {
		dst := image.NewRGBA(image.Rect(0, 0, int(float32(rect.Dx())*scale), int(float32(rect.Dy())*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
		img = dst
	}

	w := new(bytes.Buffer)
	switch mime {
	case "image/png":
		err = png.Encode(w, img)
	case "image/webp":
		err = nativewebp.Encode(w, img, nil)
	default:
		err = jpeg.Encode(w, img, nil)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
