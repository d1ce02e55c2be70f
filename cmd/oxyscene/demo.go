package main

import (
	"fmt"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"

	"github.com/go-gl/mathgl/mgl32"
)

func cmdDemo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: oxyscene demo <out.glb>")
		os.Exit(1)
	}

	doc := demoDocument()
	if err := loader.SaveBinary(doc, args[0]); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %s: %d meshes, %d nodes, %d animations\n", args[0], len(doc.Meshes), len(doc.Nodes), len(doc.Animations))
}

// demoDocument builds a textured spinning cube beside a two-joint skinned arm.
// Animation 0 ("spin") turns and bobs the cube over four seconds; animation 1 ("wave") bends
// the elbow over two.
func demoDocument() *document.Document {
	b := document.NewBuilder()

	checker := b.AddTexture("checker", checkerPixels(4), 4, 4, document.Sampler{
		MagFilter: document.FilterNearest,
		MinFilter: document.FilterNearest,
		WrapS:     document.WrapRepeat,
		WrapT:     document.WrapRepeat,
	})
	mat := document.NewMaterial("checker")
	mat.BaseColorTexture = checker
	cube := addCube(b, "cube", b.AddMaterial(mat))

	spinner := document.NewNode("spinner")
	spinner.Mesh = cube
	spinner.Translation = [3]float32{-1.5, 0, 0}
	spin := b.AddNode(spinner)

	shoulderNode := document.NewNode("shoulder")
	shoulderNode.Translation = [3]float32{1.5, -1, 0}
	shoulder := b.AddNode(shoulderNode)
	elbowNode := document.NewNode("elbow")
	elbowNode.Translation = [3]float32{0, 1, 0}
	elbow := b.AddNode(elbowNode)
	b.AddChild(shoulder, elbow)

	skin := b.AddSkin(document.Skin{
		Name:                "arm",
		Joints:              []int{shoulder, elbow},
		Skeleton:            shoulder,
		InverseBindMatrices: document.Absent,
	})
	armNode := document.NewNode("arm")
	armNode.Mesh = cube
	armNode.Skin = skin
	armNode.Scale = [3]float32{0.25, 0.25, 0.25}
	arm := b.AddNode(armNode)

	b.AddScene("demo", spin, shoulder, arm)

	spinClip := b.AddAnimation(document.Animation{Name: "spin"})
	var turns []float32
	for i := 0; i <= 4; i++ {
		turns = append(turns, yRotation(float32(i)*math.Pi/2)...)
	}
	b.AddChannel(spinClip, spin, document.PathRotation, []float32{0, 1, 2, 3, 4}, turns)
	b.AddChannel(spinClip, spin, document.PathTranslation, []float32{0, 2, 4}, []float32{
		-1.5, 0, 0,
		-1.5, 0.5, 0,
		-1.5, 0, 0,
	})

	waveClip := b.AddAnimation(document.Animation{Name: "wave"})
	bent := mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{0, 0, 1})
	b.AddChannel(waveClip, elbow, document.PathRotation, []float32{0, 1, 2}, []float32{
		0, 0, 0, 1,
		bent.V[0], bent.V[1], bent.V[2], bent.W,
		0, 0, 0, 1,
	})

	return b.Document()
}

// addCube appends a unit cube with normals and texture coordinates, four vertices per face.
func addCube(b *document.Builder, name string, material int) int {
	faces := [6][3]mgl32.Vec3{
		// normal, u, v with u x v = normal
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	var positions, normals, uvs []float32
	var indices []uint16
	for f, face := range faces {
		n, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := n.Mul(0.5).Add(u.Mul(c[0] * 0.5)).Add(v.Mul(c[1] * 0.5))
			positions = append(positions, p[0], p[1], p[2])
			normals = append(normals, n[0], n[1], n[2])
			uvs = append(uvs, (c[0]+1)/2, (1-c[1])/2)
		}
		base := uint16(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	prim := document.NewPrimitive(map[string]int{
		"POSITION":   b.AddFloats(document.TypeVec3, positions...),
		"NORMAL":     b.AddFloats(document.TypeVec3, normals...),
		"TEXCOORD_0": b.AddFloats(document.TypeVec2, uvs...),
	})
	prim.Indices = b.AddIndices(indices...)
	prim.Material = material
	return b.AddMesh(name, prim)
}

// checkerPixels returns an RGBA8 checkerboard of size x size texels.
func checkerPixels(size int) []byte {
	pixels := make([]byte, 0, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			shade := byte(40)
			if (x+y)%2 == 0 {
				shade = 220
			}
			pixels = append(pixels, shade, shade, shade, 255)
		}
	}
	return pixels
}

// yRotation returns the XYZW quaternion turning angle radians about +Y.
func yRotation(angle float32) []float32 {
	q := mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
	return []float32{q.V[0], q.V[1], q.V[2], q.W}
}
