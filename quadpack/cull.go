package quadpack

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/binmesh/mesher"
)

// ChunkPos is a chunk coordinate in chunk units.
type ChunkPos [3]int

// CameraChunk converts a world-space position to the chunk containing it.
func CameraChunk(pos mgl32.Vec3, cs int) ChunkPos {
	s := float64(cs)
	return ChunkPos{
		int(math.Floor(float64(pos.X()) / s)),
		int(math.Floor(float64(pos.Y()) / s)),
		int(math.Floor(float64(pos.Z()) / s)),
	}
}

// KeyPos unpacks a chunk key into a ChunkPos.
func KeyPos(key uint32) ChunkPos {
	x, y, z := mesher.ParseChunkKey(key)
	return ChunkPos{int(x), int(y), int(z)}
}

// VisibleFaces reports which faces of a chunk can face a camera sitting in
// chunk cam. A + face is hidden once the camera is entirely below it on
// that axis, and a - face once it is entirely above.
func VisibleFaces(cam, chunk ChunkPos) [mesher.FaceCount]bool {
	return [mesher.FaceCount]bool{
		cam[1] >= chunk[1],
		cam[1] <= chunk[1],
		cam[0] >= chunk[0],
		cam[0] <= chunk[0],
		cam[2] >= chunk[2],
		cam[2] <= chunk[2],
	}
}

// Visible appends to dst the commands that survive face culling for a camera
// at world position eye, in arena order.
func (a *Arena) Visible(dst []DrawCommand, eye mgl32.Vec3, cs int) []DrawCommand {
	cam := CameraChunk(eye, cs)
	for _, c := range a.commands {
		if VisibleFaces(cam, KeyPos(c.Key()))[c.Face()] {
			dst = append(dst, c)
		}
	}
	return dst
}
