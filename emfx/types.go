package emfx

type Vec2 struct {
	X float32
	Y float32
}

type Vec3 struct {
	X float32
	Y float32
	Z float32
}

type Vec4 struct {
	X float32
	Y float32
	Z float32
	W float32
}

// Quaternion16 is the compressed rotation of animation keys. Components are
// fixed point values in [-32767, 32767].
type Quaternion16 struct {
	X int16
	Y int16
	Z int16
	W int16
}

// Quaternion32 is the rotation stored in model nodes. Each component is kept
// as the raw 32-bit word read from the file.
type Quaternion32 struct {
	X int32
	Y int32
	Z int32
	W int32
}

// Matrix44 is a transform stored as three axis columns and a position column.
type Matrix44 struct {
	Col1 Vec4
	Col2 Vec4
	Col3 Vec4
	Pos  Vec4
}

// Color8 is a byte vertex color. Layers stored as RGB get an opaque alpha.
type Color8 struct {
	R uint8
	G uint8
	B uint8
	A uint8
}
