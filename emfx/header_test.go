package emfx_test

import (
	"errors"
	"testing"

	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/emfx/emfxtest"
)

var xacHeader = emfx.HeaderSpec{Magic: "XAC ", MajorVersion: 1, MinorVersion: 0}

func TestReadHeader(t *testing.T) {
	r := newReader(t, emfxtest.New().Header("XAC ", 1, 0, false, 3))
	h, err := emfx.ReadHeader(r, xacHeader)
	if err != nil {
		t.Fatal(err)
	}
	if h.Magic != "XAC " || h.MajorVersion != 1 || h.MinorVersion != 0 || h.BigEndian || h.MultiplyOrder != 3 {
		t.Errorf("unexpected header %+v", h)
	}
	if r.Pos() != emfx.HeaderSize {
		t.Error("pos", r.Pos())
	}
}

func TestReadHeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		data *emfxtest.Builder
		want error
	}{
		{"magic", emfxtest.New().Header("XSM ", 1, 0, false, 0), emfx.ErrBadMagic},
		{"major", emfxtest.New().Header("XAC ", 2, 0, false, 0), emfx.ErrUnsupportedVersion},
		{"minor", emfxtest.New().Header("XAC ", 1, 1, false, 0), emfx.ErrUnsupportedVersion},
		{"endian", emfxtest.New().Header("XAC ", 1, 0, true, 0), emfx.ErrUnsupportedEndianness},
		{"short", emfxtest.New().Raw('X', 'A', 'C'), emfx.ErrTruncatedData},
	}
	for _, c := range cases {
		_, err := emfx.ReadHeader(newReader(t, c.data), xacHeader)
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
}

func TestReadHeaderVersionContext(t *testing.T) {
	_, err := emfx.ReadHeader(newReader(t, emfxtest.New().Header("XAC ", 2, 0, false, 0)), xacHeader)
	var fe *emfx.FormatError
	if !errors.As(err, &fe) {
		t.Fatal("not a FormatError:", err)
	}
	if fe.Expected != "1.0" || fe.Actual != "2.0" || fe.ChunkType != emfx.NoChunk {
		t.Errorf("unexpected context %+v", fe)
	}
}
