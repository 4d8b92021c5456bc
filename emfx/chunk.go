package emfx

import (
	"errors"
	"fmt"
)

const ChunkDescriptorSize = 12

// ChunkDescriptor precedes every chunk body.
type ChunkDescriptor struct {
	Type    int32
	Length  int32
	Version int32
}

// DecodeFunc decodes one chunk body. It may read any number of bytes;
// the dispatcher repositions the stream after it returns.
type DecodeFunc func(r *Reader, c ChunkDescriptor) error

type decoderEntry struct {
	name   string
	decode DecodeFunc
}

// Dispatcher walks the chunk list of a file and hands every body to the
// decoder registered for its type. Unregistered types are skipped.
type Dispatcher struct {
	decoders map[int32]decoderEntry
	observer Observer
}

func NewDispatcher(observer Observer) *Dispatcher {
	if observer == nil {
		observer = NopObserver
	}
	return &Dispatcher{decoders: map[int32]decoderEntry{}, observer: observer}
}

// Register binds a chunk type. A nil decode registers the type as known
// while leaving its body untouched.
func (d *Dispatcher) Register(chunkType int32, name string, decode DecodeFunc) {
	d.decoders[chunkType] = decoderEntry{name: name, decode: decode}
}

// Run dispatches chunks until the end of the stream.
// After each chunk the stream is at body start + declared length, whatever the decoder consumed.
func (d *Dispatcher) Run(r *Reader) error {
	for r.Pos() < r.Size() {
		at := r.Pos()
		if r.Remaining() < ChunkDescriptorSize {
			return formatErr(TruncatedData, at, ChunkDescriptorSize, r.Remaining())
		}
		desc := ChunkDescriptor{Type: r.Int32(), Length: r.Int32(), Version: r.Int32()}
		if err := r.Err(); err != nil {
			return err
		}
		body := r.Pos()
		if desc.Length < 0 || int64(desc.Length) > r.Size()-body {
			e := formatErr(InvalidChunkLength, at, r.Size()-body, desc.Length)
			e.ChunkType = desc.Type
			e.Detail = "declared length outside stream"
			return e
		}

		entry, known := d.decoders[desc.Type]
		if known && entry.decode != nil {
			r.setChunk(desc.Type)
			err := entry.decode(r, desc)
			if err == nil {
				err = r.Err()
			}
			r.setChunk(NoChunk)
			if err != nil {
				return wrapChunkErr(err, desc, body)
			}
		}
		consumed := r.Pos() - body

		r.SeekTo(body + int64(desc.Length))
		if err := r.Err(); err != nil {
			return err
		}
		d.observer.ChunkDecoded(ChunkEvent{
			Descriptor: desc,
			Offset:     body,
			Consumed:   consumed,
			Recognized: known,
			Name:       entry.name,
		})
	}
	return nil
}

func wrapChunkErr(err error, desc ChunkDescriptor, body int64) error {
	var fe *FormatError
	var ie *IOError
	if errors.As(err, &fe) || errors.As(err, &ie) {
		return err
	}
	return fmt.Errorf("emfx: chunk %d at offset %d: %w", desc.Type, body, err)
}
