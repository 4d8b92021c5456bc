package converter

import (
	"log"
	"math"

	"github.com/R-Hidayatullah/tos-parser/geom"
	"github.com/R-Hidayatullah/tos-parser/xsm"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// writeKeys writes key times as a scalar accessor with the bounds glTF requires for sampler inputs.
func writeKeys(doc *gltf.Document, keys []float32) uint32 {
	acc := modeler.WriteAccessor(doc, gltf.TargetNone, keys)
	min, max := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, k := range keys {
		if k < min {
			min = k
		}
		if k > max {
			max = k
		}
	}
	doc.Accessors[acc].Min = []float32{min}
	doc.Accessors[acc].Max = []float32{max}
	return acc
}

func addChannel(a *gltf.Animation, node uint32, path gltf.TRSProperty, keysAcc, samplesAcc uint32) {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(keysAcc),
		Output:        gltf.Index(samplesAcc),
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

func addSubmotionChannels(doc *gltf.Document, a *gltf.Animation, node uint32, s *xsm.Submotion, scale float32) {
	if len(s.PosKeys) > 0 {
		keys := make([]float32, len(s.PosKeys))
		translations := make([][3]float32, len(s.PosKeys))
		for i, k := range s.PosKeys {
			keys[i] = k.Time
			translations[i] = geom.FromVec3(k.Position).Scale(scale).ToArray()
		}
		addChannel(a, node, gltf.TRSTranslation, writeKeys(doc, keys), modeler.WritePosition(doc, translations))
	}

	if len(s.RotKeys) > 0 {
		keys := make([]float32, len(s.RotKeys))
		rotations := make([][4]float32, len(s.RotKeys))
		var prev *geom.Quaternion
		for i, k := range s.RotKeys {
			keys[i] = k.Time
			q := geom.FromQuaternion16(k.Rotation)
			// keep neighbouring keys in the same hemisphere so linear interpolation takes the short path
			if prev != nil && prev.Dot(q) < 0 {
				q = q.Scale(-1)
			}
			prev = q
			rotations[i] = q.ToArray()
		}
		addChannel(a, node, gltf.TRSRotation, writeKeys(doc, keys), modeler.WriteTangent(doc, rotations))
	}

	if len(s.ScaleKeys) > 0 {
		keys := make([]float32, len(s.ScaleKeys))
		scales := make([][3]float32, len(s.ScaleKeys))
		for i, k := range s.ScaleKeys {
			keys[i] = k.Time
			scales[i] = [3]float32{k.Scale.X, k.Scale.Y, k.Scale.Z}
		}
		addChannel(a, node, gltf.TRSScale, writeKeys(doc, keys), modeler.WritePosition(doc, scales))
	}
}

// AddAnimationToGltf adds anim as a glTF animation. Submotions are matched to
// nodes by name; tracks for nodes missing from doc are dropped.
// Scale must match the scale the model was converted with.
func AddAnimationToGltf(doc *gltf.Document, anim *xsm.Document, name string, scale float32) *gltf.Animation {
	if anim.BoneAnimation == nil {
		return nil
	}
	if scale == 0 {
		scale = 1
	}
	if name == "" {
		name = anim.Metadata.MotionName
	}

	nodeByName := map[string]uint32{}
	for i, n := range doc.Nodes {
		if _, exists := nodeByName[n.Name]; !exists {
			nodeByName[n.Name] = uint32(i)
		}
	}

	a := &gltf.Animation{Name: name}
	for i := range anim.BoneAnimation.Submotions {
		s := &anim.BoneAnimation.Submotions[i]
		n, ok := nodeByName[s.NodeName]
		if !ok {
			log.Print("animation target not found: ", s.NodeName)
			continue
		}
		addSubmotionChannels(doc, a, n, s, scale)
	}
	if len(a.Channels) == 0 {
		return nil
	}
	doc.Animations = append(doc.Animations, a)
	return a
}
