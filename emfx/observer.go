package emfx

import "log"

// ChunkEvent describes one chunk after the dispatcher has finished with it.
type ChunkEvent struct {
	Descriptor ChunkDescriptor
	// Offset is the absolute offset of the chunk body.
	Offset int64
	// Consumed is the number of body bytes the decoder read before the skip.
	Consumed   int64
	Recognized bool
	Name       string
}

// Observer receives progress notifications while a file is decoded.
// It has no influence on decoding.
type Observer interface {
	HeaderRead(h Header)
	ChunkDecoded(ev ChunkEvent)
	Warn(msg string)
}

type nopObserver struct{}

func (nopObserver) HeaderRead(Header)       {}
func (nopObserver) ChunkDecoded(ChunkEvent) {}
func (nopObserver) Warn(string)             {}

// NopObserver discards every notification.
var NopObserver Observer = nopObserver{}

type logObserver struct {
	l *log.Logger
}

// NewLogObserver reports decoding progress to l, or to the standard logger if l is nil.
func NewLogObserver(l *log.Logger) Observer {
	if l == nil {
		l = log.Default()
	}
	return &logObserver{l: l}
}

func (o *logObserver) HeaderRead(h Header) {
	o.l.Printf("header: %q v%d.%d", h.Magic, h.MajorVersion, h.MinorVersion)
}

func (o *logObserver) ChunkDecoded(ev ChunkEvent) {
	d := ev.Descriptor
	if !ev.Recognized {
		o.l.Printf("chunk %d (v%d) at %d: skipped %d bytes", d.Type, d.Version, ev.Offset, d.Length)
		return
	}
	o.l.Printf("chunk %s (v%d) at %d: read %d/%d bytes", ev.Name, d.Version, ev.Offset, ev.Consumed, d.Length)
}

func (o *logObserver) Warn(msg string) {
	o.l.Print("warning: ", msg)
}
