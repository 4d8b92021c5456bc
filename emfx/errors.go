package emfx

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a FormatError.
type ErrorKind int

const (
	BadMagic ErrorKind = iota + 1
	UnsupportedVersion
	UnsupportedEndianness
	TruncatedData
	InvalidChunkLength
	InvalidCount
	InvalidSubMesh
	InvalidNodeParent
)

var kindNames = map[ErrorKind]string{
	BadMagic:              "bad magic",
	UnsupportedVersion:    "unsupported version",
	UnsupportedEndianness: "unsupported endianness",
	TruncatedData:         "truncated data",
	InvalidChunkLength:    "invalid chunk length",
	InvalidCount:          "invalid count",
	InvalidSubMesh:        "invalid submesh",
	InvalidNodeParent:     "invalid node parent",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is.
var (
	ErrBadMagic              = &FormatError{Kind: BadMagic}
	ErrUnsupportedVersion    = &FormatError{Kind: UnsupportedVersion}
	ErrUnsupportedEndianness = &FormatError{Kind: UnsupportedEndianness}
	ErrTruncatedData         = &FormatError{Kind: TruncatedData}
	ErrInvalidChunkLength    = &FormatError{Kind: InvalidChunkLength}
	ErrInvalidCount          = &FormatError{Kind: InvalidCount}
	ErrInvalidSubMesh        = &FormatError{Kind: InvalidSubMesh}
	ErrInvalidNodeParent     = &FormatError{Kind: InvalidNodeParent}
)

// NoChunk is the ChunkType of errors raised outside of any chunk (header, descriptors).
const NoChunk int32 = -1

// FormatError reports malformed or unsupported input.
type FormatError struct {
	Kind      ErrorKind
	Offset    int64
	ChunkType int32
	Expected  interface{}
	Actual    interface{}
	Detail    string
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("emfx: %v at offset %d", e.Kind, e.Offset)
	if e.ChunkType != NoChunk {
		msg += fmt.Sprintf(" (chunk %d)", e.ChunkType)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Expected != nil || e.Actual != nil {
		msg += fmt.Sprintf(" (expected %v, got %v)", e.Expected, e.Actual)
	}
	return msg
}

// Is matches any FormatError of the same kind, so the sentinels work with errors.Is.
func (e *FormatError) Is(target error) bool {
	var t *FormatError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// IOError wraps a failure of the underlying stream.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("emfx: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func formatErr(kind ErrorKind, offset int64, expected, actual interface{}) *FormatError {
	return &FormatError{Kind: kind, Offset: offset, ChunkType: NoChunk, Expected: expected, Actual: actual}
}
