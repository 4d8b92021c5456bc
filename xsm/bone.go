package xsm

import "github.com/R-Hidayatullah/tos-parser/emfx"

type PosKey struct {
	Position emfx.Vec3 `yaml:"position,flow"`
	Time     float32   `yaml:"time"`
}

type RotKey struct {
	Rotation emfx.Quaternion16 `yaml:"rotation,flow"`
	Time     float32           `yaml:"time"`
}

type ScaleKey struct {
	Scale emfx.Vec3 `yaml:"scale,flow"`
	Time  float32   `yaml:"time"`
}

type ScaleRotKey struct {
	Rotation emfx.Quaternion16 `yaml:"rotation,flow"`
	Time     float32           `yaml:"time"`
}

// Submotion is the keyframe track of one node. Keys are kept in file order.
type Submotion struct {
	PoseRotation          emfx.Quaternion16 `yaml:"poseRotation,flow"`
	BindPoseRotation      emfx.Quaternion16 `yaml:"bindPoseRotation,flow"`
	PoseScaleRotation     emfx.Quaternion16 `yaml:"poseScaleRotation,flow"`
	BindPoseScaleRotation emfx.Quaternion16 `yaml:"bindPoseScaleRotation,flow"`
	PosePosition          emfx.Vec3         `yaml:"posePosition,flow"`
	PoseScale             emfx.Vec3         `yaml:"poseScale,flow"`
	BindPosePosition      emfx.Vec3         `yaml:"bindPosePosition,flow"`
	BindPoseScalePosition emfx.Vec3         `yaml:"bindPoseScalePosition,flow"`
	NumPosKeys            int32             `yaml:"numPosKeys"`
	NumRotKeys            int32             `yaml:"numRotKeys"`
	NumScaleKeys          int32             `yaml:"numScaleKeys"`
	NumScaleRotKeys       int32             `yaml:"numScaleRotKeys"`
	MaxError              float32           `yaml:"maxError"`
	NodeName              string            `yaml:"nodeName"`

	PosKeys      []PosKey      `yaml:"posKeys,omitempty"`
	RotKeys      []RotKey      `yaml:"rotKeys,omitempty"`
	ScaleKeys    []ScaleKey    `yaml:"scaleKeys,omitempty"`
	ScaleRotKeys []ScaleRotKey `yaml:"scaleRotKeys,omitempty"`
}

// EndTime returns the time of the last key of any track.
func (s *Submotion) EndTime() float32 {
	var t float32
	for _, k := range s.PosKeys {
		if k.Time > t {
			t = k.Time
		}
	}
	for _, k := range s.RotKeys {
		if k.Time > t {
			t = k.Time
		}
	}
	for _, k := range s.ScaleKeys {
		if k.Time > t {
			t = k.Time
		}
	}
	for _, k := range s.ScaleRotKeys {
		if k.Time > t {
			t = k.Time
		}
	}
	return t
}

type BoneAnimation struct {
	NumSubmotions int32       `yaml:"numSubmotions"`
	Submotions    []Submotion `yaml:"submotions"`
}

func (d *Document) readBoneAnimation(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	n := r.Count("submotions")
	if err := r.Err(); err != nil {
		return err
	}
	a := &BoneAnimation{NumSubmotions: int32(n)}
	for i := 0; i < n && r.Err() == nil; i++ {
		a.Submotions = append(a.Submotions, readSubmotion(r))
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.BoneAnimation = a
	return nil
}

func readSubmotion(r *emfx.Reader) Submotion {
	s := Submotion{
		PoseRotation:          r.Quaternion16(),
		BindPoseRotation:      r.Quaternion16(),
		PoseScaleRotation:     r.Quaternion16(),
		BindPoseScaleRotation: r.Quaternion16(),
		PosePosition:          r.Vec3(),
		PoseScale:             r.Vec3(),
		BindPosePosition:      r.Vec3(),
		BindPoseScalePosition: r.Vec3(),
	}
	numPos := r.Count("position keys")
	numRot := r.Count("rotation keys")
	numScale := r.Count("scale keys")
	numScaleRot := r.Count("scale rotation keys")
	s.NumPosKeys, s.NumRotKeys = int32(numPos), int32(numRot)
	s.NumScaleKeys, s.NumScaleRotKeys = int32(numScale), int32(numScaleRot)
	s.MaxError = r.Float32()
	s.NodeName = r.ReadString()

	// 16 bytes per vector key, 12 per quaternion key
	if r.Ensure(int64(numPos) * 16) {
		s.PosKeys = make([]PosKey, numPos)
		r.Read(s.PosKeys)
	}
	if r.Ensure(int64(numRot) * 12) {
		s.RotKeys = make([]RotKey, numRot)
		r.Read(s.RotKeys)
	}
	if r.Ensure(int64(numScale) * 16) {
		s.ScaleKeys = make([]ScaleKey, numScale)
		r.Read(s.ScaleKeys)
	}
	if r.Ensure(int64(numScaleRot) * 12) {
		s.ScaleRotKeys = make([]ScaleRotKey, numScaleRot)
		r.Read(s.ScaleRotKeys)
	}
	return s
}
