package emfx

import "fmt"

// Header is the 8-byte file header shared by XAC and XSM files.
type Header struct {
	Magic        string `yaml:"magic"`
	MajorVersion uint8  `yaml:"majorVersion"`
	MinorVersion uint8  `yaml:"minorVersion"`
	BigEndian    bool   `yaml:"bigEndian"`
	// MultiplyOrder is the fourth header byte. XSM files use it as padding.
	MultiplyOrder uint8 `yaml:"multiplyOrder"`
}

// HeaderSpec describes the one header a format accepts.
type HeaderSpec struct {
	Magic        string
	MajorVersion uint8
	MinorVersion uint8
}

const HeaderSize = 8

// ReadHeader reads and validates the file header. Nothing past the header is read.
func ReadHeader(r *Reader, spec HeaderSpec) (Header, error) {
	var h Header
	start := r.Pos()
	var magic [4]byte
	if !r.readFull(magic[:]) {
		return h, r.Err()
	}
	h.Magic = string(magic[:])
	h.MajorVersion = r.Uint8()
	h.MinorVersion = r.Uint8()
	h.BigEndian = r.Uint8() != 0
	h.MultiplyOrder = r.Uint8()
	if err := r.Err(); err != nil {
		return h, err
	}

	if h.Magic != spec.Magic {
		return h, formatErr(BadMagic, start, spec.Magic, h.Magic)
	}
	if h.MajorVersion != spec.MajorVersion || h.MinorVersion != spec.MinorVersion {
		return h, formatErr(UnsupportedVersion, start+4,
			versionString(spec.MajorVersion, spec.MinorVersion),
			versionString(h.MajorVersion, h.MinorVersion))
	}
	if h.BigEndian {
		return h, formatErr(UnsupportedEndianness, start+6, "little endian", "big endian")
	}
	return h, nil
}

func versionString(major, minor uint8) string {
	return fmt.Sprintf("%d.%d", major, minor)
}
