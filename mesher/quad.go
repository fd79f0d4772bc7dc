package mesher

import "github.com/go-gl/mathgl/mgl32"

// Face identifies one of the six cube faces. The order is part of the
// rendering contract: it is the face index encoded in BaseInstance.
type Face uint8

const (
	FacePosY Face = iota
	FaceNegY
	FacePosX
	FaceNegX
	FacePosZ
	FaceNegZ
)

const FaceCount = 6

type faceSpec struct {
	name   string
	normal mgl32.Vec3
	// flip is the sign applied to the quad width by the vertex shader.
	flip int
	// widthAxis and heightAxis are the world axes (0=x, 1=y, 2=z) the quad
	// width and height extend along.
	widthAxis, heightAxis int
}

var faces = [FaceCount]faceSpec{
	{"+Y", mgl32.Vec3{0, 1, 0}, 1, 0, 2},
	{"-Y", mgl32.Vec3{0, -1, 0}, -1, 0, 2},
	{"+X", mgl32.Vec3{1, 0, 0}, -1, 1, 2},
	{"-X", mgl32.Vec3{-1, 0, 0}, 1, 1, 2},
	{"+Z", mgl32.Vec3{0, 0, 1}, -1, 0, 1},
	{"-Z", mgl32.Vec3{0, 0, -1}, 1, 0, 1},
}

func (f Face) String() string { return faces[f].name }

// Normal is the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 { return faces[f].normal }

// Flip is +1 when the quad width grows along the positive width axis and -1
// when it grows backwards from the stored origin.
func (f Face) Flip() int { return faces[f].flip }

// Axes returns the world axes spanned by the quad width and height.
func (f Face) Axes() (width, height int) { return faces[f].widthAxis, faces[f].heightAxis }

// positive reports whether the face is the + side of its axis pair.
func (f Face) positive() bool { return f&1 == 0 }

// axis returns the sweep axis used by axisIndex.
func (f Face) axis() int { return int(f) / 2 }

// Quad is one merged rectangle in the two-word layout read by the renderer:
// Data1 holds x, y, z, width and height in 6-bit fields from bit 0 upwards,
// Data2 holds the material id.
type Quad struct {
	Data1 uint32
	Data2 uint32
}

// PackQuad encodes a quad. Geometric fields must be below 64.
func PackQuad(x, y, z, w, h uint32, material uint8) Quad {
	return Quad{
		Data1: h<<24 | w<<18 | z<<12 | y<<6 | x,
		Data2: uint32(material),
	}
}

func (q Quad) X() uint32 { return q.Data1 & 63 }
func (q Quad) Y() uint32 { return q.Data1 >> 6 & 63 }
func (q Quad) Z() uint32 { return q.Data1 >> 12 & 63 }
func (q Quad) W() uint32 { return q.Data1 >> 18 & 63 }
func (q Quad) H() uint32 { return q.Data1 >> 24 & 63 }
func (q Quad) Material() uint8 { return uint8(q.Data2) }
func (q Quad) Area() int { return int(q.W() * q.H()) }
