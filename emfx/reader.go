package emfx

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Reader reads little-endian primitives from a seekable stream.
//
// The first failure is kept and turns every later read into a no-op returning
// zero values, so decoders can read a whole record and check Err once.
type Reader struct {
	r     io.ReadSeeker
	pos   int64
	size  int64
	err   error
	chunk int32
	buf   [8]byte
	text  *encoding.Decoder
}

// NewReader wraps r. Offsets reported by the Reader are absolute stream offsets.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "seek", Offset: pos, Err: err}
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, &IOError{Op: "seek", Offset: pos, Err: err}
	}
	return &Reader{
		r:     r,
		pos:   pos,
		size:  size,
		chunk: NoChunk,
		text:  charmap.ISO8859_1.NewDecoder(),
	}, nil
}

func (r *Reader) Pos() int64       { return r.pos }
func (r *Reader) Size() int64      { return r.size }
func (r *Reader) Remaining() int64 { return r.size - r.pos }
func (r *Reader) Err() error       { return r.err }

// Fail records err unless an earlier error is already pending.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Errorf records a FormatError at the current offset.
func (r *Reader) Errorf(kind ErrorKind, expected, actual interface{}, detail string) {
	e := formatErr(kind, r.pos, expected, actual)
	e.ChunkType = r.chunk
	e.Detail = detail
	r.Fail(e)
}

func (r *Reader) setChunk(t int32) { r.chunk = t }

// Ensure checks that n more bytes are available without consuming them.
func (r *Reader) Ensure(n int64) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || n > r.size-r.pos {
		r.Errorf(TruncatedData, n, r.size-r.pos, "not enough bytes")
		return false
	}
	return true
}

func (r *Reader) readFull(b []byte) bool {
	if !r.Ensure(int64(len(b))) {
		return false
	}
	n, err := io.ReadFull(r.r, b)
	r.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			r.Errorf(TruncatedData, len(b), n, "short read")
		} else {
			r.Fail(&IOError{Op: "read", Offset: r.pos, Err: err})
		}
		return false
	}
	return true
}

// Read decodes fixed-size data (structs, slices of structs) with encoding/binary.
func (r *Reader) Read(v interface{}) error {
	sz := binary.Size(v)
	if sz < 0 {
		r.Fail(errors.New("emfx: value has no fixed size"))
		return r.err
	}
	if !r.Ensure(int64(sz)) {
		return r.err
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			r.Errorf(TruncatedData, sz, nil, "short read")
		} else {
			r.Fail(&IOError{Op: "read", Offset: r.pos, Err: err})
		}
		return r.err
	}
	r.pos += int64(sz)
	return nil
}

func (r *Reader) Uint8() uint8 {
	if !r.readFull(r.buf[:1]) {
		return 0
	}
	return r.buf[0]
}

func (r *Reader) Bool() bool {
	return r.Uint8() != 0
}

func (r *Reader) Int16() int16 {
	if !r.readFull(r.buf[:2]) {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(r.buf[:2]))
}

func (r *Reader) Uint32() uint32 {
	if !r.readFull(r.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *Reader) Vec2() Vec2 {
	return Vec2{X: r.Float32(), Y: r.Float32()}
}

func (r *Reader) Vec3() Vec3 {
	return Vec3{X: r.Float32(), Y: r.Float32(), Z: r.Float32()}
}

func (r *Reader) Vec4() Vec4 {
	return Vec4{X: r.Float32(), Y: r.Float32(), Z: r.Float32(), W: r.Float32()}
}

func (r *Reader) Quaternion16() Quaternion16 {
	return Quaternion16{X: r.Int16(), Y: r.Int16(), Z: r.Int16(), W: r.Int16()}
}

func (r *Reader) Quaternion32() Quaternion32 {
	return Quaternion32{X: r.Int32(), Y: r.Int32(), Z: r.Int32(), W: r.Int32()}
}

func (r *Reader) Matrix44() Matrix44 {
	return Matrix44{Col1: r.Vec4(), Col2: r.Vec4(), Col3: r.Vec4(), Pos: r.Vec4()}
}

func (r *Reader) Color8() Color8 {
	if !r.readFull(r.buf[:4]) {
		return Color8{}
	}
	return Color8{R: r.buf[0], G: r.buf[1], B: r.buf[2], A: r.buf[3]}
}

// Color24 reads an RGB byte triple as an opaque color.
func (r *Reader) Color24() Color8 {
	if !r.readFull(r.buf[:3]) {
		return Color8{}
	}
	return Color8{R: r.buf[0], G: r.buf[1], B: r.buf[2], A: 255}
}

// Count reads a 32-bit element count and rejects negative values.
func (r *Reader) Count(what string) int {
	at := r.pos
	n := r.Int32()
	if r.err == nil && n < 0 {
		e := formatErr(InvalidCount, at, ">= 0", n)
		e.ChunkType = r.chunk
		e.Detail = what
		r.Fail(e)
		return 0
	}
	return int(n)
}

// ReadString reads a 32-bit length followed by that many single-byte characters.
func (r *Reader) ReadString() string {
	n := r.Count("string length")
	if n == 0 || r.err != nil {
		return ""
	}
	if !r.Ensure(int64(n)) {
		return ""
	}
	b := make([]byte, n)
	if !r.readFull(b) {
		return ""
	}
	s, err := r.text.Bytes(b)
	if err != nil {
		r.Fail(err)
		return ""
	}
	return string(s)
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) {
	if !r.Ensure(n) {
		return
	}
	r.SeekTo(r.pos + n)
}

// SeekTo moves to an absolute offset inside the stream.
func (r *Reader) SeekTo(pos int64) {
	if r.err != nil {
		return
	}
	if pos < 0 || pos > r.size {
		r.Errorf(TruncatedData, pos, r.size, "seek outside stream")
		return
	}
	if _, err := r.r.Seek(pos, io.SeekStart); err != nil {
		r.Fail(&IOError{Op: "seek", Offset: pos, Err: err})
		return
	}
	r.pos = pos
}
